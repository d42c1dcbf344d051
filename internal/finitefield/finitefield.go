// Package finitefield implements arithmetic over a prime field: a
// value paired with the prime modulus it is reduced against. Every
// curve in this module (the toy curves in the test suite and the
// secp256k1 specialization alike) is built on top of this one type.
package finitefield

import (
	"fmt"
	"math/big"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
)

// FieldElement is a value in [0, Prime) together with its modulus.
type FieldElement struct {
	Value *big.Int
	Prime *big.Int
}

// NewFieldElement constructs a FieldElement, enforcing 0 <= value < prime.
func NewFieldElement(value, prime *big.Int) (*FieldElement, error) {
	if value == nil {
		return nil, nil
	}
	if value.Sign() < 0 || value.Cmp(prime) >= 0 {
		return nil, bitcoinerrors.Precondition("value %s not in range [0, %s)", value, prime)
	}
	return &FieldElement{Value: new(big.Int).Set(value), Prime: new(big.Int).Set(prime)}, nil
}

func (a *FieldElement) samePrime(b *FieldElement) error {
	if a.Prime.Cmp(b.Prime) != 0 {
		return bitcoinerrors.Precondition("field elements are from different fields")
	}
	return nil
}

// Add returns a+b reduced mod Prime.
func (a *FieldElement) Add(b *FieldElement) (*FieldElement, error) {
	if err := a.samePrime(b); err != nil {
		return nil, err
	}
	result := new(big.Int).Mod(new(big.Int).Add(a.Value, b.Value), a.Prime)
	return NewFieldElement(result, a.Prime)
}

// Subtract returns a-b, normalizing a negative intermediate by adding Prime.
func (a *FieldElement) Subtract(b *FieldElement) (*FieldElement, error) {
	if err := a.samePrime(b); err != nil {
		return nil, err
	}
	result := new(big.Int).Sub(a.Value, b.Value)
	if result.Sign() < 0 {
		result.Add(result, a.Prime)
	}
	return NewFieldElement(result, a.Prime)
}

// Multiply returns a*b reduced mod Prime.
func (a *FieldElement) Multiply(b *FieldElement) (*FieldElement, error) {
	if err := a.samePrime(b); err != nil {
		return nil, err
	}
	result := new(big.Int).Mul(a.Value, b.Value)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}

// Exponentiate computes a^power mod Prime. Negative powers are handled
// via Fermat's little theorem (expo <- prime-1+expo) before the modular
// exponentiation runs.
func (a *FieldElement) Exponentiate(power *big.Int) (*FieldElement, error) {
	expo := new(big.Int).Set(power)
	if expo.Sign() < 0 {
		modulus := new(big.Int).Sub(a.Prime, big.NewInt(1))
		expo.Mod(expo.Add(expo, modulus), modulus)
	}
	result := new(big.Int).Exp(a.Value, expo, a.Prime)
	return NewFieldElement(result, a.Prime)
}

// Squared returns a^2.
func (a *FieldElement) Squared() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(2))
}

// Cubed returns a^3.
func (a *FieldElement) Cubed() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(3))
}

// Equal reports whether a and b have the same value and prime.
func (a *FieldElement) Equal(b *FieldElement) bool {
	return a.Value.Cmp(b.Value) == 0 && a.Prime.Cmp(b.Prime) == 0
}

// Negate returns (prime - value) mod prime.
func (a *FieldElement) Negate() (*FieldElement, error) {
	negated := new(big.Int).Sub(a.Prime, a.Value)
	return NewFieldElement(negated.Mod(negated, a.Prime), a.Prime)
}

// String renders a human-readable representation of the element.
func (a *FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", a.Prime.String(), a.Value.String())
}

// Sqrt returns a square root of a modulo Prime, using the closed form
// b = a^((p+1)/4) mod p when Prime is congruent to 3 mod 4 (true for
// secp256k1's field), falling back to math/big's general Tonelli-Shanks
// implementation otherwise. It returns an error if a is not a
// quadratic residue.
func (a *FieldElement) Sqrt() (*FieldElement, error) {
	root := new(big.Int).ModSqrt(a.Value, a.Prime)
	if root == nil {
		return nil, bitcoinerrors.Precondition("%s has no square root mod %s", a.Value, a.Prime)
	}
	return NewFieldElement(root, a.Prime)
}

// GetEvenOddSquareRoots returns the two square roots of a modulo Prime
// as (even, odd) big integers, letting SEC point parsing pick the one
// matching the compressed-prefix parity byte.
func (a *FieldElement) GetEvenOddSquareRoots() (even, odd *big.Int, err error) {
	root, err := a.Sqrt()
	if err != nil {
		return nil, nil, err
	}
	other := new(big.Int).Sub(a.Prime, root.Value)
	if root.Value.Bit(0) == 0 {
		return root.Value, other, nil
	}
	return other, root.Value, nil
}

// Divide computes a/b as a * b^(prime-2) mod prime (Fermat's little theorem).
func (a *FieldElement) Divide(b *FieldElement) (*FieldElement, error) {
	if err := a.samePrime(b); err != nil {
		return nil, err
	}
	if b.Value.Sign() == 0 {
		return nil, bitcoinerrors.Precondition("division by zero field element")
	}
	inverse := new(big.Int).Exp(b.Value, new(big.Int).Sub(b.Prime, big.NewInt(2)), b.Prime)
	result := new(big.Int).Mul(a.Value, inverse)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}
