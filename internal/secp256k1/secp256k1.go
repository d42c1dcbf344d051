// Package secp256k1 fixes the generic ellipticcurve.Point and
// finitefield.FieldElement to the curve the rest of this family of
// protocols standardized on: p close to 2^256, a=0, b=7, with a
// generator G of prime order N. Every key, signature, and address in
// this module is built on this one curve.
package secp256k1

import (
	"math/big"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
	"github.com/satoshiforge/chainprim/internal/ellipticcurve"
	"github.com/satoshiforge/chainprim/internal/finitefield"
)

// P is the field prime 2^256 - 2^32 - 977.
var P *big.Int

// N is the order of the generator point G.
var N *big.Int

// A, B are the curve coefficients (y^2 = x^3 + Ax + B): the curve is
// y^2 = x^3 + 7.
var A, B *FieldElement

// G is the generator point.
var G *Point

func init() {
	var ok bool
	P, ok = new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)
	if !ok {
		panic("secp256k1: bad field prime constant")
	}
	N, ok = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	if !ok {
		panic("secp256k1: bad order constant")
	}

	var err error
	A, err = NewFieldElement(big.NewInt(0))
	if err != nil {
		panic(err)
	}
	B, err = NewFieldElement(big.NewInt(7))
	if err != nil {
		panic(err)
	}

	gx, ok := new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	if !ok {
		panic("secp256k1: bad generator x constant")
	}
	gy, ok := new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b", 16)
	if !ok {
		panic("secp256k1: bad generator y constant")
	}
	gxField, err := NewFieldElement(gx)
	if err != nil {
		panic(err)
	}
	gyField, err := NewFieldElement(gy)
	if err != nil {
		panic(err)
	}
	G, err = NewPoint(gxField, gyField)
	if err != nil {
		panic(err)
	}
}

// FieldElement is a finitefield.FieldElement known to be reduced
// modulo the secp256k1 field prime P.
type FieldElement struct {
	finitefield.FieldElement
}

// NewFieldElement constructs a FieldElement in the secp256k1 field.
func NewFieldElement(value *big.Int) (*FieldElement, error) {
	fe, err := finitefield.NewFieldElement(value, P)
	if err != nil {
		return nil, err
	}
	return &FieldElement{*fe}, nil
}

// Point is an ellipticcurve.Point known to lie on secp256k1.
type Point struct {
	ellipticcurve.Point
}

// NewPoint constructs a secp256k1 Point, or the identity if x and y
// are both nil.
func NewPoint(x, y *FieldElement) (*Point, error) {
	var xfe, yfe *finitefield.FieldElement
	if x != nil {
		xfe = &x.FieldElement
	}
	if y != nil {
		yfe = &y.FieldElement
	}
	p, err := ellipticcurve.NewPoint(xfe, yfe, &A.FieldElement, &B.FieldElement)
	if err != nil {
		return nil, err
	}
	return &Point{*p}, nil
}

// ScalarMultiplication computes coefficient*p, reducing coefficient
// modulo N first since the group generated by G has order N.
func (p *Point) ScalarMultiplication(coefficient *big.Int) (*Point, error) {
	coef := new(big.Int).Mod(coefficient, N)
	result, err := p.Point.ScalarMultiplication(coef)
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// Serialize encodes p per SEC 1: compressed is 33 bytes (parity
// prefix + x), uncompressed is 65 bytes (0x04 + x + y).
func (p *Point) Serialize(compressed bool) []byte {
	xBytes := p.X.Value.FillBytes(make([]byte, 32))
	if compressed {
		prefix := byte(0x02)
		if p.Y.Value.Bit(0) == 1 {
			prefix = 0x03
		}
		return append([]byte{prefix}, xBytes...)
	}
	yBytes := p.Y.Value.FillBytes(make([]byte, 32))
	out := append([]byte{0x04}, xBytes...)
	return append(out, yBytes...)
}

// ParseSEC parses a SEC-encoded public key, recovering the y
// coordinate from its parity byte in the compressed case.
func ParseSEC(sec []byte) (*Point, error) {
	if len(sec) < 33 {
		return nil, bitcoinerrors.Parse(0, "SEC public key too short")
	}

	if sec[0] == 0x04 {
		if len(sec) < 65 {
			return nil, bitcoinerrors.Parse(0, "uncompressed SEC public key too short")
		}
		x, err := NewFieldElement(new(big.Int).SetBytes(sec[1:33]))
		if err != nil {
			return nil, err
		}
		y, err := NewFieldElement(new(big.Int).SetBytes(sec[33:65]))
		if err != nil {
			return nil, err
		}
		return NewPoint(x, y)
	}

	if sec[0] != 0x02 && sec[0] != 0x03 {
		return nil, bitcoinerrors.Parse(0, "unrecognized SEC prefix 0x%02x", sec[0])
	}

	x, err := NewFieldElement(new(big.Int).SetBytes(sec[1:33]))
	if err != nil {
		return nil, err
	}

	xCubed, err := x.Cubed()
	if err != nil {
		return nil, err
	}
	ySquared, err := xCubed.Add(&B.FieldElement)
	if err != nil {
		return nil, err
	}

	yEven, yOdd, err := ySquared.GetEvenOddSquareRoots()
	if err != nil {
		return nil, err
	}

	yValue := yOdd
	if sec[0] == 0x02 {
		yValue = yEven
	}
	y, err := NewFieldElement(yValue)
	if err != nil {
		return nil, err
	}

	return NewPoint(x, y)
}

// Hash160 returns hash160(Serialize(compressed)).
func (p *Point) Hash160(compressed bool) []byte {
	return bitcoinutil.Hash160(p.Serialize(compressed))
}

// Address returns the Base58Check address for p: version byte 0x00
// on mainnet, 0x6f on testnet, followed by Hash160.
func (p *Point) Address(compressed, testnet bool) string {
	h160 := p.Hash160(compressed)
	prefix := byte(0x00)
	if testnet {
		prefix = 0x6f
	}
	return bitcoinutil.EncodeBase58Checksum(append([]byte{prefix}, h160...))
}
