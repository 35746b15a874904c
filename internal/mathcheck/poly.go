package mathcheck

import (
	"math"

	"github.com/expr-lang/expr/ast"
)

// poly maps exponent to coefficient. Canonicalizing both sides to this
// form and subtracting gives the exact equivalence fast path: a difference
// with all-zero coefficients is the additive identity.
type poly map[int]float64

const (
	coeffEps    = 1e-9
	maxExponent = 32
)

func polyEqual(a, b ast.Node) bool {
	pa, ok := asPoly(a)
	if !ok {
		return false
	}
	pb, ok := asPoly(b)
	if !ok {
		return false
	}

	diff := addPoly(pa, pb, -1)
	for _, c := range diff {
		if math.Abs(c) > coeffEps {
			return false
		}
	}
	return true
}

// asPoly converts the subset of expressions polynomial in x: literals,
// pi/e, + - *, division by a constant, and constant integer exponents.
// Anything else falls back to numeric sampling.
func asPoly(node ast.Node) (poly, bool) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return poly{0: float64(n.Value)}, true
	case *ast.FloatNode:
		return poly{0: n.Value}, true
	case *ast.IdentifierNode:
		if n.Value == "x" {
			return poly{1: 1}, true
		}
		if c, ok := consts[n.Value]; ok {
			return poly{0: c}, true
		}
		return nil, false
	case *ast.UnaryNode:
		p, ok := asPoly(n.Node)
		if !ok {
			return nil, false
		}
		if n.Operator == "-" {
			for k := range p {
				p[k] = -p[k]
			}
		}
		return p, true
	case *ast.BinaryNode:
		left, ok := asPoly(n.Left)
		if !ok {
			return nil, false
		}
		right, ok := asPoly(n.Right)
		if !ok {
			return nil, false
		}
		switch n.Operator {
		case "+":
			return addPoly(left, right, 1), true
		case "-":
			return addPoly(left, right, -1), true
		case "*":
			return mulPoly(left, right), true
		case "/":
			c, ok := constTerm(right)
			if !ok || c == 0 {
				return nil, false
			}
			out := make(poly, len(left))
			for k, v := range left {
				out[k] = v / c
			}
			return out, true
		case "^", "**":
			c, ok := constTerm(right)
			if !ok {
				return nil, false
			}
			exp := int(math.Round(c))
			if math.Abs(c-float64(exp)) > coeffEps || exp < 0 || exp > maxExponent {
				return nil, false
			}
			out := poly{0: 1}
			for i := 0; i < exp; i++ {
				out = mulPoly(out, left)
			}
			return out, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func addPoly(a, b poly, sign float64) poly {
	out := make(poly, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += sign * v
	}
	return out
}

func mulPoly(a, b poly) poly {
	out := make(poly, len(a)*len(b))
	for ka, va := range a {
		for kb, vb := range b {
			out[ka+kb] += va * vb
		}
	}
	return out
}

func constTerm(p poly) (float64, bool) {
	for k, v := range p {
		if k != 0 && math.Abs(v) > coeffEps {
			return 0, false
		}
	}
	return p[0], true
}
