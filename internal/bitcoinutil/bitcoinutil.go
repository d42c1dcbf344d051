// Package bitcoinutil holds the byte/int codecs shared by every wire
// format in this module: little-endian varints, hash256 (SHA-256
// twice), hash160 (SHA-256 then RIPEMD-160), and Base58/Base58Check.
package bitcoinutil

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/ripemd160"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// EncodeBase58 encodes data using the Bitcoin Base58 alphabet. Leading
// 0x00 bytes become leading '1' characters.
func EncodeBase58(s []byte) string {
	var mod *big.Int
	var result []byte

	count := 0
	for _, c := range s {
		if c != 0 {
			break
		}
		count++
	}

	num := new(big.Int).SetBytes(s)
	prefix := make([]byte, count)
	for i := range prefix {
		prefix[i] = '1'
	}
	for num.Cmp(big.NewInt(0)) > 0 {
		num, mod = new(big.Int).DivMod(num, big.NewInt(58), new(big.Int))
		result = append([]byte{base58Alphabet[mod.Int64()]}, result...)
	}

	return string(append(prefix, result...))
}

// EncodeBase58Checksum appends the first 4 bytes of hash256(data) to
// data and Base58-encodes the result.
func EncodeBase58Checksum(data []byte) string {
	checksum := Hash256(data)
	dataWithChecksum := append(append([]byte{}, data...), checksum[:4]...)
	return EncodeBase58(dataWithChecksum)
}

// DecodeBase58 decodes a Base58Check string, returning the 20-byte
// payload (minus version prefix and checksum) and verifying the
// checksum.
func DecodeBase58(s string) ([]byte, error) {
	num := new(big.Int)

	for _, c := range s {
		idx := strings.IndexByte(base58Alphabet, byte(c))
		if idx < 0 {
			return nil, bitcoinerrors.Parse(0, "invalid base58 character %q", c)
		}
		num.Mul(num, big.NewInt(58))
		num.Add(num, big.NewInt(int64(idx)))
	}

	combined := make([]byte, 25)
	numBytes := num.Bytes()
	if len(numBytes) > 25 {
		return nil, bitcoinerrors.Parse(0, "base58 payload too long")
	}
	copy(combined[25-len(numBytes):], numBytes)

	checksum := combined[21:]
	want := Hash256(combined[:21])[:4]
	if !hmac.Equal(want, checksum) {
		return nil, bitcoinerrors.Parse(0, "bad base58check checksum: got %x want %x", checksum, want)
	}

	return combined[1:21], nil
}

// Hash256 is SHA-256 applied twice.
func Hash256(data []byte) []byte {
	first := Sha256Hash(data)
	return Sha256Hash(first)
}

// Hash256ToBigInt runs Hash256 over data and interprets the digest as
// a big-endian integer. Useful for turning a human-memorable secret
// into an ECDSA scalar.
func Hash256ToBigInt(data []byte) *big.Int {
	return new(big.Int).SetBytes(Hash256(data))
}

// HmacSHA256 computes the HMAC-SHA256 digest of data under key.
func HmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// SerializeInt encodes a big.Int as a minimal-length big-endian DER
// INTEGER body: leading 0x00 bytes stripped, one 0x00 prepended if the
// top bit would otherwise flip the sign.
func SerializeInt(i *big.Int) []byte {
	raw := i.FillBytes(make([]byte, 32))
	raw = LstripNullBytes(raw)

	if len(raw) > 0 && raw[0]&0x80 != 0 {
		raw = append([]byte{0x00}, raw...)
	}
	if len(raw) == 0 {
		raw = []byte{0x00}
	}

	return raw
}

// LstripNullBytes trims leading 0x00 bytes from data.
func LstripNullBytes(data []byte) []byte {
	var i int
	for i = 0; i < len(data); i++ {
		if data[i] != 0 {
			break
		}
	}
	return data[i:]
}

// ReverseBytes returns a new slice with data's bytes in reverse order.
// Used to flip between the wire's little-endian hashes and the
// family's big-endian display convention.
func ReverseBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out
}

// Hash160 is SHA-256 followed by RIPEMD-160.
func Hash160(s []byte) []byte {
	return Ripemd160Hash(Sha256Hash(s))
}

func Sha1Hash(s []byte) []byte {
	h := sha1.New()
	h.Write(s)
	return h.Sum(nil)
}

func Sha256Hash(s []byte) []byte {
	h := sha256.New()
	h.Write(s)
	return h.Sum(nil)
}

func Ripemd160Hash(s []byte) []byte {
	h := ripemd160.New()
	h.Write(s)
	return h.Sum(nil)
}

// FormatWithUnderscore renders n with underscore thousands separators,
// used for human-readable amount display.
func FormatWithUnderscore(n int) string {
	str := strconv.Itoa(n)
	result := ""
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += "_"
		}
		result += string(str[i])
	}
	return result
}

// EncodeVarint encodes i using the four-region varint framing:
// <0xFD a single byte, <=0xFFFF 0xFD+LE16, <=0xFFFFFFFF 0xFE+LE32,
// otherwise 0xFF+LE64.
func EncodeVarint(i uint64) ([]byte, error) {
	switch {
	case i < 0xfd:
		return []byte{byte(i)}, nil
	case i <= 0xffff:
		result := make([]byte, 3)
		result[0] = 0xfd
		binary.LittleEndian.PutUint16(result[1:], uint16(i))
		return result, nil
	case i <= 0xffffffff:
		result := make([]byte, 5)
		result[0] = 0xfe
		binary.LittleEndian.PutUint32(result[1:], uint32(i))
		return result, nil
	default:
		result := make([]byte, 9)
		result[0] = 0xff
		binary.LittleEndian.PutUint64(result[1:], i)
		return result, nil
	}
}

// ReadVarint reads a varint from reader, dispatching on the first
// byte per the four-region framing.
func ReadVarint(reader *bufio.Reader) (uint64, error) {
	first, err := reader.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("reading varint prefix: %w", err)
	}

	switch first {
	case 0xfd:
		return readLittleEndianUint(reader, 2)
	case 0xfe:
		return readLittleEndianUint(reader, 4)
	case 0xff:
		return readLittleEndianUint(reader, 8)
	default:
		return uint64(first), nil
	}
}

func readLittleEndianUint(reader *bufio.Reader, n int) (uint64, error) {
	buf := make([]byte, n)
	if _, err := readFull(reader, buf); err != nil {
		return 0, err
	}
	padded := make([]byte, 8)
	copy(padded, buf)
	return binary.LittleEndian.Uint64(padded), nil
}

func readFull(reader *bufio.Reader, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := reader.Read(buf[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}
