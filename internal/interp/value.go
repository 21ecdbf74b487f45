package interp

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// Kind tags a runtime value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindPtr
)

// Value is one runtime scalar: an integer, a float or a pointer. Aggregates
// never exist as values; they live in memory regions and are touched one
// scalar slot at a time, exactly like the emitted IR does.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Ptr   Pointer
}

// Pointer addresses a slot inside a region. A nil region is the null
// pointer.
type Pointer struct {
	region *region
	off    int
}

// IsNull reports whether p is the null pointer.
func (p Pointer) IsNull() bool { return p.region == nil }

// region is a contiguous run of scalar slots backing one alloca or global.
type region struct {
	slots []Value
}

func newRegion(n int) *region {
	return &region{slots: make([]Value, n)}
}

// slotCount flattens a type to its number of scalar slots.
func slotCount(t types.Type) int {
	switch t := t.(type) {
	case *types.ArrayType:
		return int(t.Len) * slotCount(t.ElemType)
	case *types.StructType:
		n := 0
		for _, f := range t.Fields {
			n += slotCount(f)
		}
		return n
	default:
		return 1
	}
}

// fieldOffset returns the slot offset of field index inside aggregate t and
// the field's type.
func fieldOffset(t types.Type, index int) (int, types.Type, error) {
	switch t := t.(type) {
	case *types.StructType:
		if index < 0 || index >= len(t.Fields) {
			return 0, nil, fmt.Errorf("field index %d out of range for %v", index, t)
		}
		off := 0
		for _, f := range t.Fields[:index] {
			off += slotCount(f)
		}
		return off, t.Fields[index], nil
	case *types.ArrayType:
		return index * slotCount(t.ElemType), t.ElemType, nil
	}
	return 0, nil, fmt.Errorf("indexing into non-aggregate %v", t)
}

// flatten writes the constant init into dst slot by slot and returns the
// number of slots written.
func flatten(init constant.Constant, dst []Value) (int, error) {
	switch init := init.(type) {
	case *constant.Int:
		dst[0] = Value{Kind: KindInt, Int: init.X.Int64()}
		return 1, nil
	case *constant.Float:
		f, _ := init.X.Float64()
		dst[0] = Value{Kind: KindFloat, Float: f}
		return 1, nil
	case *constant.Null:
		dst[0] = Value{Kind: KindPtr}
		return 1, nil
	case *constant.CharArray:
		for i, b := range init.X {
			dst[i] = Value{Kind: KindInt, Int: int64(b)}
		}
		return len(init.X), nil
	case *constant.Array:
		n := 0
		for _, elem := range init.Elems {
			written, err := flatten(elem, dst[n:])
			if err != nil {
				return 0, err
			}
			n += written
		}
		return n, nil
	case *constant.Struct:
		n := 0
		for _, field := range init.Fields {
			written, err := flatten(field, dst[n:])
			if err != nil {
				return 0, err
			}
			n += written
		}
		return n, nil
	case *constant.ZeroInitializer:
		n := slotCount(init.Typ)
		for i := 0; i < n; i++ {
			dst[i] = Value{}
		}
		return n, nil
	}
	return 0, fmt.Errorf("unsupported initializer %T", init)
}
