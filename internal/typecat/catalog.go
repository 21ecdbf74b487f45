// Package typecat maps source-level types onto LLVM IR type descriptors.
//
// The catalog memoizes everything it hands out: scalar types are the llir
// singletons, pointer types are interned per pointee, and named aggregates
// are registered once in the module's type definitions. Identity matters
// here: aggregate addressing is computed through the descriptor's layout,
// so re-requesting a name must return the same descriptor.
package typecat

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"irforge/internal/diag"
)

// FloatClass selects one of the supported floating-point widths.
type FloatClass uint8

const (
	// Single is the 32-bit float class.
	Single FloatClass = iota
	// Double is the 64-bit float class.
	Double
	// Extended is the 80-bit x87 extended class.
	Extended
)

// Catalog interns type descriptors for one module.
type Catalog struct {
	mod  *ir.Module
	ptrs map[types.Type]*types.PointerType
	aggs map[string]*types.StructType
}

// New constructs a catalog bound to mod. Named aggregates defined through
// the catalog become type definitions of mod.
func New(mod *ir.Module) *Catalog {
	return &Catalog{
		mod:  mod,
		ptrs: make(map[types.Type]*types.PointerType, 8),
		aggs: make(map[string]*types.StructType, 8),
	}
}

// Int returns the integer type of the given bit width.
func (c *Catalog) Int(width int) (*types.IntType, error) {
	switch width {
	case 1:
		return types.I1, nil
	case 8:
		return types.I8, nil
	case 16:
		return types.I16, nil
	case 32:
		return types.I32, nil
	case 64:
		return types.I64, nil
	}
	return nil, diag.New(diag.TypeBadScalarWidth, fmt.Sprintf("i%d", width), diag.ErrBadScalarWidth)
}

// Float returns the floating-point type of the given class.
func (c *Catalog) Float(class FloatClass) *types.FloatType {
	switch class {
	case Double:
		return types.Double
	case Extended:
		return types.X86_FP80
	default:
		return types.Float
	}
}

// Void returns the void type.
func (c *Catalog) Void() types.Type { return types.Void }

// PointerTo returns the pointer type with the given pointee, interned so
// repeated requests share one descriptor.
func (c *Catalog) PointerTo(elem types.Type) *types.PointerType {
	if pt, ok := c.ptrs[elem]; ok {
		return pt
	}
	pt := types.NewPointer(elem)
	c.ptrs[elem] = pt
	return pt
}

// ArrayOf returns the array type with n elements of elem.
func (c *Catalog) ArrayOf(n int, elem types.Type) (*types.ArrayType, error) {
	length, err := safecast.Conv[uint64](n)
	if err != nil {
		return nil, fmt.Errorf("array length: %w", err)
	}
	return types.NewArray(length, elem), nil
}

// DefineStruct registers a named struct type. The call is idempotent by
// name: a second definition returns the existing descriptor and does not
// re-validate the field list.
func (c *Catalog) DefineStruct(name string, fields ...types.Type) *types.StructType {
	if st, ok := c.aggs[name]; ok {
		return st
	}
	st := types.NewStruct(fields...)
	c.mod.NewTypeDef(name, st)
	c.aggs[name] = st
	return st
}

// DefineUnion registers a named union type. Unions lower to a single-member
// struct holding the widest member; all members share that storage and the
// loader picks the type. Ties go to the first member, matching C layout for
// the catalog's member sets. Idempotent by name like DefineStruct.
func (c *Catalog) DefineUnion(name string, members ...types.Type) *types.StructType {
	if st, ok := c.aggs[name]; ok {
		return st
	}
	var storage types.Type
	var widest uint64
	for _, m := range members {
		if size := c.SizeOf(m); size > widest {
			storage = m
			widest = size
		}
	}
	fields := []types.Type{}
	if storage != nil {
		fields = append(fields, storage)
	}
	return c.DefineStruct(name, fields...)
}

// Aggregate looks up a previously defined named aggregate. Requesting a name
// before its definition is a usage error: emission order is fixed by the
// caller, so there is nothing to wait for.
func (c *Catalog) Aggregate(name string) (*types.StructType, error) {
	st, ok := c.aggs[name]
	if !ok {
		return nil, diag.New(diag.NameUnknownAggregate, name, diag.ErrUnknownAggregate)
	}
	return st, nil
}

// SizeOf reports the storage size of t in bytes, using the natural unpadded
// layout the emitter assumes. Only used for union storage selection.
func (c *Catalog) SizeOf(t types.Type) uint64 {
	switch t := t.(type) {
	case *types.IntType:
		if t.BitSize <= 8 {
			return 1
		}
		return t.BitSize / 8
	case *types.FloatType:
		switch t.Kind {
		case types.FloatKindFloat:
			return 4
		case types.FloatKindDouble:
			return 8
		case types.FloatKindX86_FP80:
			return 16
		}
		return 8
	case *types.PointerType:
		return 8
	case *types.ArrayType:
		return t.Len * c.SizeOf(t.ElemType)
	case *types.StructType:
		var total uint64
		for _, f := range t.Fields {
			total += c.SizeOf(f)
		}
		return total
	}
	return 0
}
