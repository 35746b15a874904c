// Package mathcheck decides whether a free-form answer expression matches
// a problem's canonical answer, and filters out inputs that try to invoke
// a solver instead of answering.
package mathcheck

import (
	"errors"
	"math"
	"math/rand"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

const (
	samplePoints = 10
	tolerance    = 0.001
)

var errUnsupported = errors.New("unsupported expression")

var funcs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
	"exp":  math.Exp,
	"ln":   math.Log,
	"log":  math.Log,
}

var consts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// AreEquivalent reports whether two expressions describe the same function
// of x. An exact comparison runs first; otherwise both sides are sampled
// at random points under a hybrid absolute/relative tolerance. A point
// where either side is undefined counts neither for nor against
// equivalence, which means two expressions undefined at every sampled
// point are accepted — a known weak spot kept for domain-restricted
// answers like sqrt and ln.
//
// Anything that fails to parse or references an unknown name makes the
// whole check false: malformed input is a wrong answer, never a crash.
func AreEquivalent(userExpr, wantExpr string) bool {
	user, err := compile(userExpr)
	if err != nil {
		return false
	}
	want, err := compile(wantExpr)
	if err != nil {
		return false
	}

	// Exact path: identical polynomial difference needs no numeric error.
	if polyEqual(user.node, want.node) {
		return true
	}

	for i := 0; i < samplePoints; i++ {
		x := rand.Float64()*20 - 10
		if math.Abs(x) < 0.1 {
			x += 0.5 // dodge removable singularities at the origin
		}

		uv, ok := evalAt(user.prog, x)
		if !ok {
			continue
		}
		wv, ok := evalAt(want.prog, x)
		if !ok {
			continue
		}
		if !isFinite(uv) || !isFinite(wv) {
			continue // outside one side's domain
		}

		diff := math.Abs(uv - wv)
		magnitude := math.Max(math.Abs(uv), math.Abs(wv))
		if magnitude < 1.0 {
			if diff > tolerance {
				return false
			}
		} else if diff/magnitude > tolerance {
			return false
		}
	}
	return true
}

type compiled struct {
	prog *vm.Program
	node ast.Node
}

func compile(src string) (compiled, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return compiled{}, err
	}
	if err := validate(tree.Node); err != nil {
		return compiled{}, err
	}
	prog, err := expr.Compile(src, expr.Env(evalEnv(0)))
	if err != nil {
		return compiled{}, err
	}
	return compiled{prog: prog, node: tree.Node}, nil
}

// validate whitelists the arithmetic subset the checker understands:
// numbers, x, the known constants and single-argument functions, and the
// operators + - * / ^.
func validate(node ast.Node) error {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode:
		return nil
	case *ast.IdentifierNode:
		if n.Value == "x" {
			return nil
		}
		if _, ok := consts[n.Value]; ok {
			return nil
		}
		return errUnsupported
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			return errUnsupported
		}
		return validate(n.Node)
	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/", "^", "**":
		default:
			return errUnsupported
		}
		if err := validate(n.Left); err != nil {
			return err
		}
		return validate(n.Right)
	case *ast.CallNode:
		ident, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return errUnsupported
		}
		if _, known := funcs[ident.Value]; !known {
			return errUnsupported
		}
		if len(n.Arguments) != 1 {
			return errUnsupported
		}
		return validate(n.Arguments[0])
	default:
		return errUnsupported
	}
}

func evalEnv(x float64) map[string]interface{} {
	env := make(map[string]interface{}, len(funcs)+len(consts)+1)
	for name, fn := range funcs {
		env[name] = fn
	}
	for name, v := range consts {
		env[name] = v
	}
	env["x"] = x
	return env
}

func evalAt(prog *vm.Program, x float64) (float64, bool) {
	out, err := expr.Run(prog, evalEnv(x))
	if err != nil {
		return 0, false
	}
	switch v := out.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
