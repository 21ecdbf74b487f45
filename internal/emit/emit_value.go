package emit

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
)

// The value/address protocol: every named entity is a memory address.
// Reading requires an explicit Load, writing an explicit Store, and a cell
// that itself holds a pointer needs LoadThroughPointer for the extra
// indirection.

// AllocateStorage creates a function-local storage cell of typ with
// unspecified initial content. The returned value is the cell's address.
func (e *Emitter) AllocateStorage(typ types.Type, name string) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	cell := blk.NewAlloca(typ)
	if name != "" {
		cell.SetName(name)
	}
	return cell, nil
}

// Load reads through exactly one indirection. The pointee type is inferred
// from the address's own static type.
func (e *Emitter) Load(addr value.Value) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	pt, ok := addr.Type().(*types.PointerType)
	if !ok {
		return nil, diag.New(diag.TypeNotAddress, addr.String(), diag.ErrNotAddress)
	}
	return blk.NewLoad(pt.ElemType, addr), nil
}

// LoadThroughPointer reads a cell that holds a pointer: first the pointer
// value, then the value it points at. This is the rvalue path for pointer
// and by-reference parameters.
func (e *Emitter) LoadThroughPointer(addr value.Value) (value.Value, error) {
	ptr, err := e.Load(addr)
	if err != nil {
		return nil, err
	}
	return e.Load(ptr)
}

// Store writes v into the cell at addr. The value type must match the
// address's pointee type; mismatches fail here instead of surfacing later as
// a verification abort.
func (e *Emitter) Store(addr, v value.Value) error {
	blk, err := e.block()
	if err != nil {
		return err
	}
	pt, ok := addr.Type().(*types.PointerType)
	if !ok {
		return diag.New(diag.TypeNotAddress, addr.String(), diag.ErrNotAddress)
	}
	if !types.Equal(pt.ElemType, v.Type()) {
		return diag.New(diag.TypeStoreMismatch, addr.String(), diag.ErrStoreTypeMismatch)
	}
	blk.NewStore(v, addr)
	return nil
}

// AddNSW emits a signed add with no-signed-wrap semantics.
func (e *Emitter) AddNSW(x, y value.Value) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	sum := blk.NewAdd(x, y)
	sum.OverflowFlags = []enum.OverflowFlag{enum.OverflowFlagNSW}
	return sum, nil
}

// Increment loads the integer cell at addr and produces its value plus step.
// The caller stores the result back; the loop builder uses this for the
// increment arm.
func (e *Emitter) Increment(addr value.Value, step int64) (value.Value, error) {
	v, err := e.Load(addr)
	if err != nil {
		return nil, err
	}
	it, ok := v.Type().(*types.IntType)
	if !ok {
		return nil, diag.New(diag.TypeNotAddress, addr.String(), diag.ErrNotAddress)
	}
	return e.AddNSW(v, constant.NewInt(it, step))
}

// ICmp emits an integer comparison in the current block.
func (e *Emitter) ICmp(pred enum.IPred, x, y value.Value) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewICmp(pred, x, y), nil
}

// FCmp emits a floating-point comparison in the current block.
func (e *Emitter) FCmp(pred enum.FPred, x, y value.Value) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewFCmp(pred, x, y), nil
}

// SExt sign-extends v to the wider integer type to.
func (e *Emitter) SExt(v value.Value, to types.Type) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewSExt(v, to), nil
}

// ZExt zero-extends v to the wider integer type to. Used to widen an i1
// comparison result to a declared return type.
func (e *Emitter) ZExt(v value.Value, to types.Type) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewZExt(v, to), nil
}
