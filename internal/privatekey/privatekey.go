// Package privatekey implements secp256k1 private keys: RFC 6979
// deterministic signing and WIF serialization.
package privatekey

import (
	"bytes"
	"math/big"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/secp256k1"
	"github.com/satoshiforge/chainprim/internal/signature"
)

// PrivateKey is a secret scalar e together with its public point P = eG.
type PrivateKey struct {
	Secret *big.Int
	Point  *secp256k1.Point
}

// New constructs a PrivateKey from secret, deriving the public point.
func New(secret *big.Int) (*PrivateKey, error) {
	point, err := secp256k1.G.ScalarMultiplication(secret)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{Secret: secret, Point: point}, nil
}

// Sign produces an ECDSA signature over message hash z, using a
// deterministic nonce per RFC 6979 so the same (secret, z) always
// yields the same signature.
func (e *PrivateKey) Sign(z *big.Int) (*signature.Signature, error) {
	if z == nil {
		return nil, bitcoinerrors.Precondition("signature hash must not be nil")
	}

	k := e.GetDeterministicK(z)

	R, err := secp256k1.G.ScalarMultiplication(k)
	if err != nil {
		return nil, err
	}
	r := R.X.Value

	re := new(big.Int).Mul(r, e.Secret)
	rePlusZ := new(big.Int).Add(re, z)

	kInv := new(big.Int).ModInverse(k, secp256k1.N)
	if kInv == nil {
		return nil, bitcoinerrors.Crypto("nonce has no modular inverse")
	}
	s := new(big.Int).Mod(new(big.Int).Mul(rePlusZ, kInv), secp256k1.N)

	halfN := new(big.Int).Rsh(secp256k1.N, 1)
	if s.Cmp(halfN) > 0 {
		s.Sub(secp256k1.N, s)
	}

	return signature.New(r, s), nil
}

// GetDeterministicK derives the ECDSA nonce k from the secret and
// message hash z per RFC 6979, using HMAC-SHA256 as the underlying
// PRF.
func (e *PrivateKey) GetDeterministicK(z *big.Int) *big.Int {
	zCopy := new(big.Int).Set(z)
	if zCopy.Cmp(secp256k1.N) > 0 {
		zCopy.Sub(zCopy, secp256k1.N)
	}

	k := make([]byte, 32)
	v := bytes.Repeat([]byte{0x01}, 32)
	zBytes := zCopy.FillBytes(make([]byte, 32))
	secretBytes := e.Secret.FillBytes(make([]byte, 32))

	k = bitcoinutil.HmacSHA256(k, append(append(v, 0x00), append(secretBytes, zBytes...)...))
	v = bitcoinutil.HmacSHA256(k, v)
	k = bitcoinutil.HmacSHA256(k, append(append(v, 0x01), append(secretBytes, zBytes...)...))
	v = bitcoinutil.HmacSHA256(k, v)

	candidate := new(big.Int)
	for {
		v = bitcoinutil.HmacSHA256(k, v)
		candidate.SetBytes(v)

		if candidate.Cmp(big.NewInt(1)) >= 0 && candidate.Cmp(secp256k1.N) < 0 {
			return candidate
		}

		k = bitcoinutil.HmacSHA256(k, append(v, 0x00))
		v = bitcoinutil.HmacSHA256(k, v)
	}
}

// Serialize encodes the secret in Wallet Import Format: Base58Check
// of the version byte, the 32-byte secret, and an optional 0x01
// compressed-flag byte.
func (e *PrivateKey) Serialize(compressed bool, testnet bool) string {
	secretBytes := e.Secret.FillBytes(make([]byte, 32))
	if compressed {
		secretBytes = append(secretBytes, 0x01)
	}

	prefix := byte(0x80)
	if testnet {
		prefix = 0xef
	}

	payload := append([]byte{prefix}, secretBytes...)
	return bitcoinutil.EncodeBase58Checksum(payload)
}
