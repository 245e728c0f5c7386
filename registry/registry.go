// Package registry holds the function and constant tables an Evaluator
// resolves identifiers against, with optional case-insensitive matching
// via golang.org/x/text/cases.
package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/informatter/exprlang/exprerr"
)

// Function is the callable signature every registered function must
// satisfy: a fixed or variable-length slice of already-evaluated
// arguments in, a single result or an error out.
type Function func(args []float64) (float64, error)

// FunctionInfo describes a registered function's calling contract.
//
//   - NumberOfParameters is the fixed arity, ignored when IsDynamicArity
//     is true.
//   - IsDynamicArity allows any number of arguments >= 1 (max, min, avg,
//     median, sum).
//   - IsIdempotent tells the optimizer whether constant-folding this call
//     is safe (false for e.g. random()).
type FunctionInfo struct {
	Name               string
	NumberOfParameters int
	IsDynamicArity     bool
	IsIdempotent       bool
	Callable           Function
}

// Accepts reports whether argCount is a legal call arity for fn.
func (fn FunctionInfo) Accepts(argCount int) bool {
	if fn.IsDynamicArity {
		return argCount >= 1
	}
	return argCount == fn.NumberOfParameters
}

// ConstantInfo is a named numeric constant (e.g. pi, e).
type ConstantInfo struct {
	Name  string
	Value float64
}

// caseFolder normalizes an identifier for lookup when case-insensitive
// matching is enabled. ASCII identifiers (the overwhelming common case)
// are lowercased with strings.ToLower; anything containing a non-ASCII
// rune falls back to golang.org/x/text/cases, which folds correctly across
// scripts where a naive byte-wise lower() would not (e.g. Turkish İ/i).
type caseFolder struct {
	caseSensitive bool
	caser         cases.Caser
}

func newCaseFolder(caseSensitive bool) caseFolder {
	return caseFolder{
		caseSensitive: caseSensitive,
		caser:         cases.Fold(cases.Compact),
	}
}

func (f caseFolder) key(name string) string {
	if f.caseSensitive {
		return name
	}
	if isASCII(name) {
		return strings.ToLower(name)
	}
	return f.caser.String(name)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// FunctionRegistry maps function names to their FunctionInfo, honoring a
// fixed case-sensitivity setting chosen at construction time; it cannot
// be changed afterwards without rebuilding the registry.
type FunctionRegistry struct {
	folder  caseFolder
	entries map[string]FunctionInfo
	guarded bool
}

// NewFunctionRegistry creates an empty registry. When guarded is true,
// Register refuses to overwrite an existing entry; when false,
// overwriting is allowed but the new FunctionInfo must keep the same
// arity shape (fixed vs dynamic, and the same fixed count) as the entry
// it replaces, so a redefinition cannot silently change a call site's
// validity.
func NewFunctionRegistry(caseSensitive, guarded bool) *FunctionRegistry {
	return &FunctionRegistry{
		folder:  newCaseFolder(caseSensitive),
		entries: make(map[string]FunctionInfo),
		guarded: guarded,
	}
}

// Register adds or replaces a function. It enforces only this registry's
// own invariants (see NewFunctionRegistry); it has no view of the
// constant registry, so the guarded-mode check that a name is not both a
// constant and a function is done by evaluator.New when it registers
// entries into both registries.
func (r *FunctionRegistry) Register(info FunctionInfo) error {
	key := r.folder.key(info.Name)
	existing, exists := r.entries[key]
	if exists {
		if r.guarded {
			return exprerr.NewArgumentException(
				"function '" + info.Name + "' is already registered (guarded mode)")
		}
		if existing.IsDynamicArity != info.IsDynamicArity ||
			(!info.IsDynamicArity && existing.NumberOfParameters != info.NumberOfParameters) {
			return exprerr.NewArgumentException(
				"cannot redefine function '" + info.Name + "' with a different arity")
		}
	}
	r.entries[key] = info
	return nil
}

// Lookup resolves name to its FunctionInfo, honoring the registry's
// case-sensitivity setting.
func (r *FunctionRegistry) Lookup(name string) (FunctionInfo, bool) {
	info, ok := r.entries[r.folder.key(name)]
	return info, ok
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered function name, for Evaluator.Functions.
func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, info := range r.entries {
		names = append(names, info.Name)
	}
	return names
}

// ConstantRegistry maps constant names to their ConstantInfo, under the
// same case-sensitivity and guarded-mode rules as FunctionRegistry.
type ConstantRegistry struct {
	folder  caseFolder
	entries map[string]ConstantInfo
	guarded bool
}

// NewConstantRegistry creates an empty constant registry.
func NewConstantRegistry(caseSensitive, guarded bool) *ConstantRegistry {
	return &ConstantRegistry{
		folder:  newCaseFolder(caseSensitive),
		entries: make(map[string]ConstantInfo),
		guarded: guarded,
	}
}

// Register adds or replaces a constant.
func (r *ConstantRegistry) Register(info ConstantInfo) error {
	key := r.folder.key(info.Name)
	if _, exists := r.entries[key]; exists && r.guarded {
		return exprerr.NewArgumentException(
			"constant '" + info.Name + "' is already registered (guarded mode)")
	}
	r.entries[key] = info
	return nil
}

// Lookup resolves name to its ConstantInfo.
func (r *ConstantRegistry) Lookup(name string) (ConstantInfo, bool) {
	info, ok := r.entries[r.folder.key(name)]
	return info, ok
}

// Has reports whether name is registered.
func (r *ConstantRegistry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered constant name, for Evaluator.Constants.
func (r *ConstantRegistry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, info := range r.entries {
		names = append(names, info.Name)
	}
	return names
}
