package evaluator

import (
	"math"
	"math/rand"
	"sort"

	"github.com/informatter/exprlang/exprerr"
)

// defaultConstants is the built-in constant table.
var defaultConstants = []ConstantDefinition{
	{Name: "pi", Value: math.Pi},
	{Name: "e", Value: math.E},
}

// defaultFunctions is the built-in function table: fixed-arity
// idempotent trigonometric/log/rounding/conditional functions, a handful
// of dynamic-arity idempotent aggregates, and one non-idempotent nullary
// function (random) that the optimizer must never fold.
var defaultFunctions = []FunctionDefinition{
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	unary("csc", func(x float64) float64 { return 1 / math.Sin(x) }),
	unary("sec", func(x float64) float64 { return 1 / math.Cos(x) }),
	unary("cot", func(x float64) float64 { return 1 / math.Tan(x) }),
	unary("acot", func(x float64) float64 { return math.Atan(1 / x) }),
	unary("loge", math.Log),
	unary("log10", math.Log10),
	unary("sqrt", math.Sqrt),
	unary("abs", math.Abs),
	unary("ceiling", math.Ceil),
	unary("floor", math.Floor),
	unary("truncate", math.Trunc),
	unary("round", math.Round),

	{
		Name:               "logn",
		NumberOfParameters: 2,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			return math.Log(args[0]) / math.Log(args[1]), nil
		},
	},
	{
		Name:               "if",
		NumberOfParameters: 3,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			if args[0] != 0 {
				return args[1], nil
			}
			return args[2], nil
		},
	},
	{
		Name:               "ifless",
		NumberOfParameters: 4,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			if args[0] < args[1] {
				return args[2], nil
			}
			return args[3], nil
		},
	},
	{
		Name:               "ifmore",
		NumberOfParameters: 4,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			if args[0] > args[1] {
				return args[2], nil
			}
			return args[3], nil
		},
	},
	{
		Name:               "ifequal",
		NumberOfParameters: 4,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			if args[0] == args[1] {
				return args[2], nil
			}
			return args[3], nil
		},
	},

	{
		Name:           "max",
		IsDynamicArity: true,
		IsIdempotent:   true,
		Callable: func(args []float64) (float64, error) {
			m := args[0]
			for _, v := range args[1:] {
				if v > m {
					m = v
				}
			}
			return m, nil
		},
	},
	{
		Name:           "min",
		IsDynamicArity: true,
		IsIdempotent:   true,
		Callable: func(args []float64) (float64, error) {
			m := args[0]
			for _, v := range args[1:] {
				if v < m {
					m = v
				}
			}
			return m, nil
		},
	},
	{
		Name:           "avg",
		IsDynamicArity: true,
		IsIdempotent:   true,
		Callable: func(args []float64) (float64, error) {
			sum := 0.0
			for _, v := range args {
				sum += v
			}
			return sum / float64(len(args)), nil
		},
	},
	{
		Name:           "sum",
		IsDynamicArity: true,
		IsIdempotent:   true,
		Callable: func(args []float64) (float64, error) {
			sum := 0.0
			for _, v := range args {
				sum += v
			}
			return sum, nil
		},
	},
	{
		Name:           "median",
		IsDynamicArity: true,
		IsIdempotent:   true,
		Callable: func(args []float64) (float64, error) {
			sorted := append([]float64(nil), args...)
			sort.Float64s(sorted)
			mid := len(sorted) / 2
			if len(sorted)%2 == 1 {
				return sorted[mid], nil
			}
			return (sorted[mid-1] + sorted[mid]) / 2, nil
		},
	},

	{
		Name:               "random",
		NumberOfParameters: 0,
		IsIdempotent:       false,
		Callable: func(args []float64) (float64, error) {
			if len(args) != 0 {
				return 0, exprerr.NewArgumentException("random() takes no arguments")
			}
			return rand.Float64(), nil
		},
	},
}

func unary(name string, fn func(float64) float64) FunctionDefinition {
	return FunctionDefinition{
		Name:               name,
		NumberOfParameters: 1,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			return fn(args[0]), nil
		},
	}
}
