package emit

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
)

// Aggregate addressing: struct-member and array-element access lowers to
// inbounds indexed address computations typed through the aggregate's
// layout, producing an address suitable for Load/Store.

// ElementAddress computes the address of array[index]. arrAddr is a cell
// holding the decayed element pointer; indexAddr is a cell holding the
// integer index. The index is loaded and sign-extended to the 64-bit
// indexing width before the address computation.
func (e *Emitter) ElementAddress(arrAddr, indexAddr value.Value) (value.Value, error) {
	base, err := e.Load(arrAddr)
	if err != nil {
		return nil, err
	}
	bt, ok := base.Type().(*types.PointerType)
	if !ok {
		return nil, diag.New(diag.TypeNotAddress, base.String(), diag.ErrNotAddress)
	}
	index, err := e.Load(indexAddr)
	if err != nil {
		return nil, err
	}
	wide, err := e.SExt(index, types.I64)
	if err != nil {
		return nil, err
	}
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	gep := blk.NewGetElementPtr(bt.ElemType, base, wide)
	gep.InBounds = true
	return gep, nil
}

// FieldAddress computes the address of field index inside the aggregate
// pointed to by addr. The computation is two-level (offset 0 into the
// pointed-to aggregate, then the field index): a bare single-level index
// would step across repetitions of the whole aggregate instead of selecting
// a field.
func (e *Emitter) FieldAddress(addr value.Value, index int) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	pt, ok := addr.Type().(*types.PointerType)
	if !ok {
		return nil, diag.New(diag.TypeNotAddress, addr.String(), diag.ErrNotAddress)
	}
	if err := checkAggregateIndex(pt.ElemType, index); err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.I32, 0)
	field := constant.NewInt(types.I32, int64(index))
	gep := blk.NewGetElementPtr(pt.ElemType, addr, zero, field)
	gep.InBounds = true
	return gep, nil
}

// FieldLValue resolves the address of field index of the aggregate whose
// pointer is held in the cell aggAlloca.
func (e *Emitter) FieldLValue(aggAlloca value.Value, index int) (value.Value, error) {
	aggAddr, err := e.Load(aggAlloca)
	if err != nil {
		return nil, err
	}
	return e.FieldAddress(aggAddr, index)
}

// FieldRValue resolves field index like FieldLValue and loads its value,
// typed by the aggregate's layout at that index.
func (e *Emitter) FieldRValue(aggAlloca value.Value, index int) (value.Value, error) {
	aggAddr, err := e.Load(aggAlloca)
	if err != nil {
		return nil, err
	}
	fieldAddr, err := e.FieldAddress(aggAddr, index)
	if err != nil {
		return nil, err
	}
	pt := aggAddr.Type().(*types.PointerType)
	ft, err := fieldType(pt.ElemType, index)
	if err != nil {
		return nil, err
	}
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewLoad(ft, fieldAddr), nil
}

// checkAggregateIndex rejects addressing into scalars and out-of-range
// struct fields. Union storage is a single-member struct, so index 0 always
// addresses the start of the shared storage.
func checkAggregateIndex(t types.Type, index int) error {
	switch t := t.(type) {
	case *types.StructType:
		if index < 0 || index >= len(t.Fields) {
			return diag.New(diag.TypeFieldOutOfRange, t.String(), diag.ErrFieldOutOfRange)
		}
		return nil
	case *types.ArrayType:
		return nil
	}
	return diag.New(diag.TypeNotAggregate, t.String(), diag.ErrNotAggregate)
}

func fieldType(t types.Type, index int) (types.Type, error) {
	switch t := t.(type) {
	case *types.StructType:
		if index < 0 || index >= len(t.Fields) {
			return nil, diag.New(diag.TypeFieldOutOfRange, t.String(), diag.ErrFieldOutOfRange)
		}
		return t.Fields[index], nil
	case *types.ArrayType:
		return t.ElemType, nil
	}
	return nil, diag.New(diag.TypeNotAggregate, t.String(), diag.ErrNotAggregate)
}
