package messages

import (
	"math"
	"strconv"
	"strings"

	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// constant is the result of statically evaluating an expression.
type constant struct {
	str   string
	num   float64
	isNum bool
}

// evaluate folds string and numeric literals, unary +/- on numbers and
// binary + over constants. Template literals are never folded.
func evaluate(n *jsast.Node) (constant, bool) {
	if n == nil {
		return constant{}, false
	}

	switch n.Kind {
	case jsast.KindStringLiteral:
		return constant{str: n.Str}, true

	case jsast.KindNumericLiteral:
		return constant{num: n.Number, isNum: true}, true

	case jsast.KindUnaryExpression:
		arg, ok := evaluate(n.Argument)
		if !ok || !arg.isNum {
			return constant{}, false
		}
		switch n.Operator {
		case "-":
			return constant{num: -arg.num, isNum: true}, true
		case "+":
			return arg, true
		}

	case jsast.KindBinaryExpression:
		if n.Operator != "+" {
			return constant{}, false
		}
		left, ok := evaluate(n.Left)
		if !ok {
			return constant{}, false
		}
		right, ok := evaluate(n.Right)
		if !ok {
			return constant{}, false
		}
		if left.isNum && right.isNum {
			return constant{num: left.num + right.num, isNum: true}, true
		}
		return constant{str: left.String() + right.String()}, true
	}

	return constant{}, false
}

// String converts the constant the way JavaScript's ToString would.
func (c constant) String() string {
	if !c.isNum {
		return c.str
	}
	return formatNumber(c.num)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07"); JavaScript does not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
