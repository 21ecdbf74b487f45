// Package programs holds the closed showcase catalog: each program is a
// fixed, hand-ordered emission call sequence producing one module. There is
// no parsing and no decision logic here; the sequences are the programs.
package programs

import (
	"fmt"
	"sort"

	"irforge/internal/emit"
)

// Program is one catalog entry. Expect, when non-nil, is the value main()
// must evaluate to; the driver's check mode and the property tests use it.
type Program struct {
	Name   string
	Desc   string
	Expect *int64
	build  func(e *emit.Emitter) error
}

// Build emits the program into a fresh module tagged with triple (host
// triple when empty).
func (p Program) Build(triple string) (*emit.Emitter, error) {
	e := emit.New(p.Name)
	if triple == "" {
		triple = emit.HostTriple()
	}
	e.SetTargetTriple(triple)
	if err := p.build(e); err != nil {
		return nil, fmt.Errorf("program %s: %w", p.Name, err)
	}
	return e, nil
}

var catalog = []Program{
	{
		Name:   "globals",
		Desc:   "global scalars, arrays, pointers, a struct and a union",
		Expect: expect(3),
		build:  buildGlobals,
	},
	{
		Name:   "constants",
		Desc:   "function-scoped private constants and string literals",
		Expect: expect(1),
		build:  buildConstants,
	},
	{
		Name:   "locals",
		Desc:   "stack locals with store/load round trips",
		Expect: expect(1),
		build:  buildLocals,
	},
	{
		Name:   "compare",
		Desc:   "integer and floating-point comparison forms",
		Expect: expect(1),
		build:  buildCompare,
	},
	{
		Name:   "loop_for",
		Desc:   "for-form counting loop summing start..end",
		Expect: expect(55),
		build:  buildLoopFor,
	},
	{
		Name:   "loop_while",
		Desc:   "while-form counting loop summing start..end",
		Expect: expect(55),
		build:  buildLoopWhile,
	},
	{
		Name:   "pointers",
		Desc:   "swap-by-pointer through by-reference parameters",
		Expect: expect(10),
		build:  buildPointers,
	},
	{
		Name:   "structs",
		Desc:   "struct field access, array elements and call marshalling",
		Expect: expect(20),
		build:  buildStructs,
	},
}

// Registry returns the catalog sorted by name.
func Registry() []Program {
	out := make([]Program, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted program names.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, p := range catalog {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a catalog entry by name.
func Lookup(name string) (Program, bool) {
	for _, p := range catalog {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

func expect(n int64) *int64 { return &n }
