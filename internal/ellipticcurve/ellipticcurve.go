// Package ellipticcurve implements the generic short-Weierstrass
// point y^2 = x^3 + ax + b over a finitefield.FieldElement. It is
// deliberately curve-agnostic: the secp256k1 specialization in
// internal/secp256k1 is built by fixing a, b, and the field's prime,
// not by duplicating this arithmetic.
package ellipticcurve

import (
	"math/big"

	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/finitefield"
)

// Point is a point on y^2 = x^3 + ax + b. X and Y are both nil for the
// point at infinity (the group identity); otherwise both are present
// and the curve equation holds.
type Point struct {
	X *finitefield.FieldElement
	Y *finitefield.FieldElement
	A *finitefield.FieldElement
	B *finitefield.FieldElement
}

// NewPoint constructs a Point, verifying the curve equation for affine
// points and allowing (nil, nil) as the identity.
func NewPoint(x, y, a, b *finitefield.FieldElement) (*Point, error) {
	if a == nil || b == nil {
		return nil, bitcoinerrors.Precondition("elliptic curve parameters are not well-defined")
	}

	if x == nil && y == nil {
		return &Point{nil, nil, a, b}, nil
	}
	if x == nil || y == nil {
		return nil, bitcoinerrors.Precondition("point must have both coordinates or neither")
	}

	xCubed, err := x.Cubed()
	if err != nil {
		return nil, err
	}
	ax, err := a.Multiply(x)
	if err != nil {
		return nil, err
	}
	rhs, err := xCubed.Add(ax)
	if err != nil {
		return nil, err
	}
	rhs, err = rhs.Add(b)
	if err != nil {
		return nil, err
	}
	ySquared, err := y.Squared()
	if err != nil {
		return nil, err
	}
	if !ySquared.Equal(rhs) {
		return nil, bitcoinerrors.Precondition("point (%s, %s) does not lie on curve y^2 = x^3 + %s x + %s", x, y, a, b)
	}

	return &Point{x, y, a, b}, nil
}

// IsIdentityElement reports whether p is the point at infinity.
func (p *Point) IsIdentityElement() bool {
	return p.X == nil && p.Y == nil
}

// Equal reports whether p and q are the same point on the same curve.
func (p *Point) Equal(q *Point) bool {
	if !p.A.Equal(q.A) || !p.B.Equal(q.B) {
		return false
	}
	if p.IsIdentityElement() && q.IsIdentityElement() {
		return true
	}
	if p.IsIdentityElement() || q.IsIdentityElement() {
		return false
	}
	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}

// EqualEllipticCurve reports whether p and q share the same (a, b).
func (p *Point) EqualEllipticCurve(q *Point) bool {
	return p.A.Equal(q.A) && p.B.Equal(q.B)
}

// String renders a human-readable representation of the point.
func (p *Point) String() string {
	if p == nil {
		return "Point(nil)"
	}
	x, y := "inf", "inf"
	if p.X != nil {
		x = p.X.Value.String()
	}
	if p.Y != nil {
		y = p.Y.Value.String()
	}
	return "Point_" + p.A.Value.String() + "_" + p.B.Value.String() + "(" + x + "," + y + ") Field_" + p.A.Prime.String()
}

// Copy returns a new Point equal to p.
func (p *Point) Copy() (*Point, error) {
	return NewPoint(p.X, p.Y, p.A, p.B)
}

// Add performs elliptic-curve point addition, following the standard
// affine formulas with the identity, vertical-tangent, and additive-
// inverse special cases called out in the curve's design notes.
func (p *Point) Add(q *Point) (*Point, error) {
	if !p.EqualEllipticCurve(q) {
		return nil, bitcoinerrors.Precondition("points are on different curves")
	}

	if p.IsIdentityElement() {
		return q.Copy()
	}
	if q.IsIdentityElement() {
		return p.Copy()
	}

	if p.Equal(q) && p.isVerticalTangent(q) {
		return NewPoint(nil, nil, p.A, p.B)
	}

	yNeg, err := q.Y.Negate()
	if err != nil {
		return nil, err
	}
	if p.Equal(&Point{q.X, yNeg, p.A, p.B}) {
		return NewPoint(nil, nil, p.A, p.B)
	}

	slope, err := p.calculateSlope(q)
	if err != nil {
		return nil, err
	}
	x3, err := p.calculateX3(q, slope)
	if err != nil {
		return nil, err
	}
	y3, err := p.calculateY3(x3, slope)
	if err != nil {
		return nil, err
	}

	return NewPoint(x3, y3, p.A, p.B)
}

func (p *Point) isVerticalTangent(q *Point) bool {
	return p.Equal(q) && p.Y.Value.Cmp(big.NewInt(0)) == 0
}

func (p *Point) calculateSlope(q *Point) (*finitefield.FieldElement, error) {
	dx, dy, err := p.calculatedxdy(q)
	if err != nil {
		return nil, err
	}
	return dy.Divide(dx)
}

func (p *Point) calculateX3(q *Point, slope *finitefield.FieldElement) (*finitefield.FieldElement, error) {
	slopeSquared, err := slope.Squared()
	if err != nil {
		return nil, err
	}
	xTotal, err := p.X.Add(q.X)
	if err != nil {
		return nil, err
	}
	return slopeSquared.Subtract(xTotal)
}

func (p *Point) calculateY3(x3, slope *finitefield.FieldElement) (*finitefield.FieldElement, error) {
	dx13, err := p.X.Subtract(x3)
	if err != nil {
		return nil, err
	}
	slopedx13, err := slope.Multiply(dx13)
	if err != nil {
		return nil, err
	}
	return slopedx13.Subtract(p.Y)
}

// calculatedxdy returns (dx, dy) for the slope calculation: the
// tangent-line differential when p == q, or the secant-line
// differential otherwise.
func (p *Point) calculatedxdy(q *Point) (*finitefield.FieldElement, *finitefield.FieldElement, error) {
	if p.Equal(q) {
		three, err := finitefield.NewFieldElement(big.NewInt(3), p.X.Prime)
		if err != nil {
			return nil, nil, err
		}
		dy, err := p.X.Squared()
		if err != nil {
			return nil, nil, err
		}
		dy, err = dy.Multiply(three)
		if err != nil {
			return nil, nil, err
		}
		dy, err = dy.Add(p.A)
		if err != nil {
			return nil, nil, err
		}
		dx, err := p.Y.Add(p.Y)
		if err != nil {
			return nil, nil, err
		}
		return dx, dy, nil
	}

	dy, err := q.Y.Subtract(p.Y)
	if err != nil {
		return nil, nil, err
	}
	dx, err := q.X.Subtract(p.X)
	if err != nil {
		return nil, nil, err
	}
	return dx, dy, nil
}

// ScalarMultiplication computes coefficient*p using double-and-add,
// iterating the coefficient's bits from least to most significant.
func (p *Point) ScalarMultiplication(coefficient *big.Int) (*Point, error) {
	if coefficient.Sign() < 0 {
		return nil, bitcoinerrors.Precondition("scalar coefficient must be non-negative")
	}

	result, err := NewPoint(nil, nil, p.A, p.B)
	if err != nil {
		return nil, err
	}
	current, err := p.Copy()
	if err != nil {
		return nil, err
	}

	coef := new(big.Int).Set(coefficient)
	for coef.Sign() > 0 {
		if coef.Bit(0) == 1 {
			result, err = result.Add(current)
			if err != nil {
				return nil, err
			}
		}
		current, err = current.Add(current)
		if err != nil {
			return nil, err
		}
		coef.Rsh(coef, 1)
	}
	return result, nil
}
