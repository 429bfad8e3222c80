package query

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-odata-engine/internal/edm"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

type methodFunc func(ev *evaluator, args []TypedOperand) (TypedOperand, error)

type methodDef struct {
	minArgs, maxArgs int
	fn               methodFunc
}

// arity renders the accepted argument count, e.g. "2" or "2 to 3".
func (d methodDef) arity() string {
	if d.minArgs == d.maxArgs {
		return strconv.Itoa(d.minArgs)
	}
	return strconv.Itoa(d.minArgs) + " to " + strconv.Itoa(d.maxArgs)
}

// methods lists the built-in functions available in $filter and $orderby.
var methods map[string]methodDef

func init() {
	methods = map[string]methodDef{
		"contains":   {2, 2, stringPredicate("contains", strings.Contains)},
		"startswith": {2, 2, stringPredicate("startswith", strings.HasPrefix)},
		"endswith":   {2, 2, stringPredicate("endswith", strings.HasSuffix)},
		"length":     {1, 1, methodLength},
		"indexof":    {2, 2, methodIndexOf},
		"substring":  {2, 3, methodSubstring},
		"tolower":    {1, 1, stringTransform("tolower", strings.ToLower)},
		"toupper":    {1, 1, stringTransform("toupper", strings.ToUpper)},
		"trim":       {1, 1, stringTransform("trim", strings.TrimSpace)},
		"concat":     {2, 2, methodConcat},

		"year":              {1, 1, datePart("year", func(t time.Time) int { return t.Year() }, edm.Date, edm.DateTimeOffset)},
		"month":             {1, 1, datePart("month", func(t time.Time) int { return int(t.Month()) }, edm.Date, edm.DateTimeOffset)},
		"day":               {1, 1, datePart("day", func(t time.Time) int { return t.Day() }, edm.Date, edm.DateTimeOffset)},
		"hour":              {1, 1, datePart("hour", func(t time.Time) int { return t.Hour() }, edm.DateTimeOffset, edm.TimeOfDay)},
		"minute":            {1, 1, datePart("minute", func(t time.Time) int { return t.Minute() }, edm.DateTimeOffset, edm.TimeOfDay)},
		"second":            {1, 1, datePart("second", func(t time.Time) int { return t.Second() }, edm.DateTimeOffset, edm.TimeOfDay)},
		"fractionalseconds": {1, 1, methodFractionalSeconds},
		"date":              {1, 1, methodDate},
		"time":              {1, 1, methodTime},
		"now":               {0, 0, methodNow},

		"round":   {1, 1, rounding("round", math.Round, func(d decimal.Decimal) decimal.Decimal { return d.Round(0) })},
		"floor":   {1, 1, rounding("floor", math.Floor, decimal.Decimal.Floor)},
		"ceiling": {1, 1, rounding("ceiling", math.Ceil, decimal.Decimal.Ceil)},
	}
}

func (ev *evaluator) call(n *MethodCallExpr) (TypedOperand, error) {
	def, ok := methods[strings.ToLower(n.Method)]
	if !ok {
		return TypedOperand{}, queryerrors.Evaluation("unsupported function %q", n.Method)
	}
	if len(n.Args) < def.minArgs || len(n.Args) > def.maxArgs {
		return TypedOperand{}, queryerrors.Evaluation("function %s expects %s argument(s), got %d", n.Method, def.arity(), len(n.Args))
	}

	args := make([]TypedOperand, len(n.Args))
	for i, arg := range n.Args {
		v, err := ev.eval(arg)
		if err != nil {
			return TypedOperand{}, err
		}
		args[i] = v
	}
	return def.fn(ev, args)
}

// requireKind checks that every argument is of one of the given kinds and
// reports whether any of them is null.
func requireKind(name string, args []TypedOperand, kinds ...edm.PrimitiveKind) (bool, error) {
	anyNull := false
	for _, a := range args {
		ok := false
		for _, k := range kinds {
			if a.Type == k && !a.IsEnum() {
				ok = true
				break
			}
		}
		if !ok {
			return false, queryerrors.Evaluation("function %s does not accept %s", name, a.Type)
		}
		if a.IsNull() {
			anyNull = true
		}
	}
	return anyNull, nil
}

func stringPredicate(name string, pred func(s, substr string) bool) methodFunc {
	return func(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
		null, err := requireKind(name, args, edm.String)
		if err != nil {
			return TypedOperand{}, err
		}
		if null {
			return NullOperand(edm.Boolean), nil
		}
		return BoolOperand(pred(args[0].Value.(string), args[1].Value.(string))), nil
	}
}

func stringTransform(name string, fn func(string) string) methodFunc {
	return func(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
		null, err := requireKind(name, args, edm.String)
		if err != nil {
			return TypedOperand{}, err
		}
		if null {
			return NullOperand(edm.String), nil
		}
		return TypedOperand{Type: edm.String, Value: fn(args[0].Value.(string))}, nil
	}
}

func methodLength(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("length", args, edm.String)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.Int32), nil
	}
	return TypedOperand{Type: edm.Int32, Value: int32(utf8.RuneCountInString(args[0].Value.(string)))}, nil
}

func methodIndexOf(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("indexof", args, edm.String)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.Int32), nil
	}
	s, sub := args[0].Value.(string), args[1].Value.(string)
	idx := strings.Index(s, sub)
	if idx > 0 {
		idx = utf8.RuneCountInString(s[:idx])
	}
	return TypedOperand{Type: edm.Int32, Value: int32(idx)}, nil
}

func methodSubstring(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("substring", args[:1], edm.String)
	if err != nil {
		return TypedOperand{}, err
	}
	bounds := make([]int64, 0, 2)
	for _, a := range args[1:] {
		if !a.Type.IsIntegral() {
			return TypedOperand{}, queryerrors.Evaluation("function substring requires integer positions, got %s", a.Type)
		}
		if a.IsNull() {
			null = true
			continue
		}
		n, _ := asInt64(a.Value)
		bounds = append(bounds, n)
	}
	if null {
		return NullOperand(edm.String), nil
	}

	runes := []rune(args[0].Value.(string))
	start := clamp(bounds[0], 0, int64(len(runes)))
	end := int64(len(runes))
	if len(bounds) == 2 {
		end = clamp(start+bounds[1], start, int64(len(runes)))
	}
	return TypedOperand{Type: edm.String, Value: string(runes[start:end])}, nil
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}

func methodConcat(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("concat", args, edm.String)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.String), nil
	}
	return TypedOperand{Type: edm.String, Value: args[0].Value.(string) + args[1].Value.(string)}, nil
}

func datePart(name string, part func(time.Time) int, kinds ...edm.PrimitiveKind) methodFunc {
	return func(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
		null, err := requireKind(name, args, kinds...)
		if err != nil {
			return TypedOperand{}, err
		}
		if null {
			return NullOperand(edm.Int32), nil
		}
		return TypedOperand{Type: edm.Int32, Value: int32(part(args[0].Value.(time.Time)))}, nil
	}
}

func methodFractionalSeconds(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("fractionalseconds", args, edm.DateTimeOffset, edm.TimeOfDay)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.Decimal), nil
	}
	nanos := args[0].Value.(time.Time).Nanosecond()
	return TypedOperand{Type: edm.Decimal, Value: decimal.New(int64(nanos), -9)}, nil
}

func methodDate(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("date", args, edm.DateTimeOffset)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.Date), nil
	}
	v, _ := edm.Normalize(edm.Date, args[0].Value)
	return TypedOperand{Type: edm.Date, Value: v}, nil
}

func methodTime(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
	null, err := requireKind("time", args, edm.DateTimeOffset)
	if err != nil {
		return TypedOperand{}, err
	}
	if null {
		return NullOperand(edm.TimeOfDay), nil
	}
	v, _ := edm.Normalize(edm.TimeOfDay, args[0].Value)
	return TypedOperand{Type: edm.TimeOfDay, Value: v}, nil
}

func methodNow(ev *evaluator, _ []TypedOperand) (TypedOperand, error) {
	return TypedOperand{Type: edm.DateTimeOffset, Value: ev.ctx.now()}, nil
}

func rounding(name string, float func(float64) float64, dec func(decimal.Decimal) decimal.Decimal) methodFunc {
	return func(_ *evaluator, args []TypedOperand) (TypedOperand, error) {
		a := args[0]
		if !a.Type.IsNumeric() || a.IsEnum() {
			return TypedOperand{}, queryerrors.Evaluation("function %s requires a numeric argument, got %s", name, a.Type)
		}
		if a.IsNull() {
			return a, nil
		}
		switch v := a.Value.(type) {
		case float32:
			return TypedOperand{Type: a.Type, Value: float32(float(float64(v)))}, nil
		case float64:
			return TypedOperand{Type: a.Type, Value: float(v)}, nil
		case decimal.Decimal:
			return TypedOperand{Type: a.Type, Value: dec(v)}, nil
		default:
			return a, nil
		}
	}
}
