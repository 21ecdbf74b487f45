// Package interp evaluates modules produced by the emitter. It covers
// exactly the closed construct set the showcase programs use (alloca, load,
// store, getelementptr, integer add/sub, sign/zero extension, comparisons,
// branches, calls and returns) over a slot-based memory model. Anything
// outside the subset is an error, not a fallback.
package interp

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	maxSteps     = 1 << 22
	maxCallDepth = 128
)

// Machine holds the global memory image for one module.
type Machine struct {
	mod     *ir.Module
	globals map[*ir.Global]Pointer
	steps   int
}

// New builds a machine with every global initialized from its initializer.
func New(mod *ir.Module) (*Machine, error) {
	m := &Machine{
		mod:     mod,
		globals: make(map[*ir.Global]Pointer, len(mod.Globals)),
	}
	for _, g := range mod.Globals {
		if g.Init == nil {
			return nil, fmt.Errorf("global %s has no initializer", g.Name())
		}
		reg := newRegion(slotCount(g.ContentType))
		if _, err := flatten(g.Init, reg.slots); err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name(), err)
		}
		m.globals[g] = Pointer{region: reg}
	}
	return m, nil
}

// Run evaluates the named function with the given arguments.
func (m *Machine) Run(entry string, args ...Value) (Value, error) {
	fn, err := m.lookup(entry)
	if err != nil {
		return Value{}, err
	}
	m.steps = 0
	return m.call(fn, args, 0)
}

// Run is the one-shot form: build a machine for mod and evaluate entry.
func Run(mod *ir.Module, entry string, args ...Value) (Value, error) {
	m, err := New(mod)
	if err != nil {
		return Value{}, err
	}
	return m.Run(entry, args...)
}

// GlobalValue reads the current first slot of the named global. Used by
// tests to observe side effects of a run.
func (m *Machine) GlobalValue(name string) (Value, error) {
	for g, ptr := range m.globals {
		if g.Name() == name {
			return ptr.region.slots[ptr.off], nil
		}
	}
	return Value{}, fmt.Errorf("unknown global %s", name)
}

func (m *Machine) lookup(name string) (*ir.Func, error) {
	for _, f := range m.mod.Funcs {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown function %s", name)
}

type frame struct {
	vals map[value.Value]Value
}

func (m *Machine) call(fn *ir.Func, args []Value, depth int) (Value, error) {
	if depth > maxCallDepth {
		return Value{}, fmt.Errorf("call depth exceeded in %s", fn.Name())
	}
	if len(fn.Blocks) == 0 {
		return m.external(fn, args)
	}
	if len(args) != len(fn.Params) {
		return Value{}, fmt.Errorf("%s: %d args, want %d", fn.Name(), len(args), len(fn.Params))
	}
	fr := &frame{vals: make(map[value.Value]Value, 32)}
	for i, p := range fn.Params {
		fr.vals[p] = args[i]
	}

	blk := fn.Blocks[0]
	for {
		for _, inst := range blk.Insts {
			m.steps++
			if m.steps > maxSteps {
				return Value{}, fmt.Errorf("step limit exceeded in %s", fn.Name())
			}
			if err := m.exec(fr, inst, depth); err != nil {
				return Value{}, fmt.Errorf("%s: %w", fn.Name(), err)
			}
		}
		switch term := blk.Term.(type) {
		case *ir.TermRet:
			if term.X == nil {
				return Value{Kind: KindVoid}, nil
			}
			return m.operand(fr, term.X)
		case *ir.TermBr:
			next, ok := term.Target.(*ir.Block)
			if !ok {
				return Value{}, fmt.Errorf("%s: branch to non-block", fn.Name())
			}
			blk = next
		case *ir.TermCondBr:
			cond, err := m.operand(fr, term.Cond)
			if err != nil {
				return Value{}, err
			}
			var target value.Value
			if cond.Int != 0 {
				target = term.TargetTrue
			} else {
				target = term.TargetFalse
			}
			next, ok := target.(*ir.Block)
			if !ok {
				return Value{}, fmt.Errorf("%s: branch to non-block", fn.Name())
			}
			blk = next
		default:
			return Value{}, fmt.Errorf("%s: unsupported terminator %T", fn.Name(), term)
		}
	}
}

// external models the handful of declared-only functions the catalog calls.
func (m *Machine) external(fn *ir.Func, args []Value) (Value, error) {
	switch fn.Name() {
	case "printf":
		// Output is not modeled; printf reports zero characters written.
		return Value{Kind: KindInt}, nil
	}
	return Value{}, fmt.Errorf("call to undefined function %s", fn.Name())
}

func (m *Machine) exec(fr *frame, inst ir.Instruction, depth int) error {
	switch inst := inst.(type) {
	case *ir.InstAlloca:
		reg := newRegion(slotCount(inst.ElemType))
		fr.vals[inst] = Value{Kind: KindPtr, Ptr: Pointer{region: reg}}
	case *ir.InstLoad:
		src, err := m.operand(fr, inst.Src)
		if err != nil {
			return err
		}
		slot, err := deref(src)
		if err != nil {
			return err
		}
		fr.vals[inst] = *slot
	case *ir.InstStore:
		v, err := m.operand(fr, inst.Src)
		if err != nil {
			return err
		}
		dst, err := m.operand(fr, inst.Dst)
		if err != nil {
			return err
		}
		slot, err := deref(dst)
		if err != nil {
			return err
		}
		*slot = v
	case *ir.InstGetElementPtr:
		base, err := m.operand(fr, inst.Src)
		if err != nil {
			return err
		}
		indices := make([]int64, len(inst.Indices))
		for i, idx := range inst.Indices {
			iv, err := m.operand(fr, idx)
			if err != nil {
				return err
			}
			indices[i] = iv.Int
		}
		ptr, err := gep(base.Ptr, inst.ElemType, indices)
		if err != nil {
			return err
		}
		fr.vals[inst] = Value{Kind: KindPtr, Ptr: ptr}
	case *ir.InstAdd:
		x, y, err := m.binaryOperands(fr, inst.X, inst.Y)
		if err != nil {
			return err
		}
		fr.vals[inst] = Value{Kind: KindInt, Int: x.Int + y.Int}
	case *ir.InstSub:
		x, y, err := m.binaryOperands(fr, inst.X, inst.Y)
		if err != nil {
			return err
		}
		fr.vals[inst] = Value{Kind: KindInt, Int: x.Int - y.Int}
	case *ir.InstSExt:
		v, err := m.operand(fr, inst.From)
		if err != nil {
			return err
		}
		fr.vals[inst] = v
	case *ir.InstZExt:
		v, err := m.operand(fr, inst.From)
		if err != nil {
			return err
		}
		fr.vals[inst] = v
	case *ir.InstICmp:
		x, y, err := m.binaryOperands(fr, inst.X, inst.Y)
		if err != nil {
			return err
		}
		fr.vals[inst] = boolValue(icmp(inst.Pred, x.Int, y.Int))
	case *ir.InstFCmp:
		x, err := m.operand(fr, inst.X)
		if err != nil {
			return err
		}
		y, err := m.operand(fr, inst.Y)
		if err != nil {
			return err
		}
		fr.vals[inst] = boolValue(fcmp(inst.Pred, x.Float, y.Float))
	case *ir.InstCall:
		callee, ok := inst.Callee.(*ir.Func)
		if !ok {
			return fmt.Errorf("indirect call unsupported")
		}
		args := make([]Value, len(inst.Args))
		for i, a := range inst.Args {
			av, err := m.operand(fr, a)
			if err != nil {
				return err
			}
			args[i] = av
		}
		ret, err := m.call(callee, args, depth+1)
		if err != nil {
			return err
		}
		fr.vals[inst] = ret
	default:
		return fmt.Errorf("unsupported instruction %T", inst)
	}
	return nil
}

func (m *Machine) binaryOperands(fr *frame, xv, yv value.Value) (Value, Value, error) {
	x, err := m.operand(fr, xv)
	if err != nil {
		return Value{}, Value{}, err
	}
	y, err := m.operand(fr, yv)
	if err != nil {
		return Value{}, Value{}, err
	}
	return x, y, nil
}

func (m *Machine) operand(fr *frame, v value.Value) (Value, error) {
	if cached, ok := fr.vals[v]; ok {
		return cached, nil
	}
	switch v := v.(type) {
	case *constant.Int:
		return Value{Kind: KindInt, Int: v.X.Int64()}, nil
	case *constant.Float:
		f, _ := v.X.Float64()
		return Value{Kind: KindFloat, Float: f}, nil
	case *constant.Null:
		return Value{Kind: KindPtr}, nil
	case *ir.Global:
		ptr, ok := m.globals[v]
		if !ok {
			return Value{}, fmt.Errorf("unknown global %s", v.Name())
		}
		return Value{Kind: KindPtr, Ptr: ptr}, nil
	case *constant.ExprGetElementPtr:
		src, err := m.operand(fr, v.Src)
		if err != nil {
			return Value{}, err
		}
		indices := make([]int64, len(v.Indices))
		for i, idx := range v.Indices {
			ci, ok := idx.(*constant.Int)
			if !ok {
				return Value{}, fmt.Errorf("non-constant index in constant gep")
			}
			indices[i] = ci.X.Int64()
		}
		ptr, err := gep(src.Ptr, v.ElemType, indices)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindPtr, Ptr: ptr}, nil
	}
	return Value{}, fmt.Errorf("unsupported operand %T", v)
}

func deref(v Value) (*Value, error) {
	if v.Kind != KindPtr || v.Ptr.IsNull() {
		return nil, fmt.Errorf("dereference of non-pointer or null")
	}
	if v.Ptr.off < 0 || v.Ptr.off >= len(v.Ptr.region.slots) {
		return nil, fmt.Errorf("pointer offset %d outside region of %d slots", v.Ptr.off, len(v.Ptr.region.slots))
	}
	return &v.Ptr.region.slots[v.Ptr.off], nil
}

// gep applies indexed addressing: the first index steps across whole values
// of elemType, later indices select within the aggregate.
func gep(base Pointer, elemType types.Type, indices []int64) (Pointer, error) {
	if base.IsNull() {
		return Pointer{}, fmt.Errorf("getelementptr on null pointer")
	}
	if len(indices) == 0 {
		return base, nil
	}
	off := base.off + int(indices[0])*slotCount(elemType)
	cur := elemType
	for _, idx := range indices[1:] {
		fieldOff, fieldTyp, err := fieldOffset(cur, int(idx))
		if err != nil {
			return Pointer{}, err
		}
		off += fieldOff
		cur = fieldTyp
	}
	if off < 0 || off > len(base.region.slots) {
		return Pointer{}, fmt.Errorf("address computation escapes region: offset %d of %d slots", off, len(base.region.slots))
	}
	return Pointer{region: base.region, off: off}, nil
}

func boolValue(b bool) Value {
	if b {
		return Value{Kind: KindInt, Int: 1}
	}
	return Value{Kind: KindInt}
}

func icmp(pred enum.IPred, x, y int64) bool {
	switch pred {
	case enum.IPredEQ:
		return x == y
	case enum.IPredNE:
		return x != y
	case enum.IPredSGT:
		return x > y
	case enum.IPredSGE:
		return x >= y
	case enum.IPredSLT:
		return x < y
	case enum.IPredSLE:
		return x <= y
	case enum.IPredUGT:
		return uint64(x) > uint64(y)
	case enum.IPredUGE:
		return uint64(x) >= uint64(y)
	case enum.IPredULT:
		return uint64(x) < uint64(y)
	case enum.IPredULE:
		return uint64(x) <= uint64(y)
	}
	return false
}

func fcmp(pred enum.FPred, x, y float64) bool {
	switch pred {
	case enum.FPredOEQ:
		return x == y
	case enum.FPredONE, enum.FPredUNE:
		return x != y
	case enum.FPredOGT:
		return x > y
	case enum.FPredOGE:
		return x >= y
	case enum.FPredOLT:
		return x < y
	case enum.FPredOLE:
		return x <= y
	}
	return false
}
