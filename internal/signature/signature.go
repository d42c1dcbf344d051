// Package signature implements ECDSA signature serialization (DER)
// and verification against a secp256k1 public key.
package signature

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/secp256k1"
)

// Signature is an ECDSA (r, s) pair.
type Signature struct {
	R *big.Int
	S *big.Int
}

// New constructs a Signature, copying r and s.
func New(r, s *big.Int) *Signature {
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s)}
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%x,%x)", sig.R, sig.S)
}

// Serialize encodes sig as a DER SEQUENCE of two INTEGERs.
func (sig *Signature) Serialize() []byte {
	rSerialized := bitcoinutil.SerializeInt(sig.R)
	sSerialized := bitcoinutil.SerializeInt(sig.S)

	result := append([]byte{0x02, byte(len(rSerialized))}, rSerialized...)
	result = append(result, []byte{0x02, byte(len(sSerialized))}...)
	result = append(result, sSerialized...)

	return append([]byte{0x30, byte(len(result))}, result...)
}

// ParseDER parses a DER-encoded signature.
func ParseDER(data []byte) (*Signature, error) {
	reader := bytes.NewReader(data)

	compound, err := reader.ReadByte()
	if err != nil || compound != 0x30 {
		return nil, bitcoinerrors.Parse(0, "bad signature: missing DER SEQUENCE tag")
	}

	length, err := reader.ReadByte()
	if err != nil || int(length)+2 != len(data) {
		return nil, bitcoinerrors.Parse(1, "incorrect signature length")
	}

	r, err := parseBigInt(reader)
	if err != nil {
		return nil, err
	}

	s, err := parseBigInt(reader)
	if err != nil {
		return nil, err
	}

	if int(length) != 6+r.BitLen()/8+s.BitLen()/8 {
		return nil, bitcoinerrors.Parse(1, "signature length does not match encoded integers")
	}

	return New(r, s), nil
}

func parseBigInt(reader *bytes.Reader) (*big.Int, error) {
	marker, err := reader.ReadByte()
	if err != nil || marker != 0x02 {
		return nil, bitcoinerrors.Parse(0, "bad signature: missing DER INTEGER tag")
	}

	valLength, err := reader.ReadByte()
	if err != nil {
		return nil, bitcoinerrors.Parse(0, "bad signature: missing integer length")
	}

	valBytes := make([]byte, valLength)
	if _, err := io.ReadFull(reader, valBytes); err != nil {
		return nil, bitcoinerrors.Parse(0, "bad signature: truncated integer")
	}

	return new(big.Int).SetBytes(valBytes), nil
}

// Verify reports whether sig is a valid ECDSA signature over message
// hash z under public key pub: with u = z/s mod N and v = r/s mod N,
// sig is valid iff (uG + vP).x == r.
func Verify(pub *secp256k1.Point, z *big.Int, sig *Signature) bool {
	sInv := new(big.Int).ModInverse(sig.S, secp256k1.N)
	if sInv == nil {
		return false
	}

	u := new(big.Int).Mod(new(big.Int).Mul(z, sInv), secp256k1.N)
	v := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), secp256k1.N)

	uG, err := secp256k1.G.ScalarMultiplication(u)
	if err != nil {
		return false
	}
	vP, err := pub.ScalarMultiplication(v)
	if err != nil {
		return false
	}

	sum, err := uG.Add(&vP.Point)
	if err != nil {
		return false
	}

	return sum.X.Value.Cmp(sig.R) == 0
}
