// Package verify is the structural well-formedness check run after each
// function definition and over completed modules. It validates the
// invariants the emission layer defers: every block terminated, all blocks
// reachable from entry, memory operations pointer-typed and type-consistent,
// calls and returns agreeing with their signatures.
package verify

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"irforge/internal/diag"
)

// Module verifies every defined function and every global of m.
func Module(m *ir.Module) error {
	for _, g := range m.Globals {
		if g.Init == nil {
			return diag.New(diag.VerifyNoInitializer, g.Name(), fmt.Errorf("global has no initializer"))
		}
	}
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue // declaration only
		}
		if err := Function(f); err != nil {
			return err
		}
	}
	return nil
}

// Function verifies one defined function.
func Function(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return diag.New(diag.VerifyNoEntry, f.Name(), fmt.Errorf("function has no entry block"))
	}
	for _, b := range f.Blocks {
		if b.Term == nil {
			return diag.New(diag.VerifyNoTerminator, blockName(f, b), fmt.Errorf("block has no terminator"))
		}
		if err := checkTerm(f, b); err != nil {
			return err
		}
		for _, inst := range b.Insts {
			if err := checkInst(f, b, inst); err != nil {
				return err
			}
		}
	}
	return checkReachability(f)
}

func blockName(f *ir.Func, b *ir.Block) string {
	return f.Name() + ":" + b.Name()
}

func checkTerm(f *ir.Func, b *ir.Block) error {
	switch term := b.Term.(type) {
	case *ir.TermRet:
		ret := f.Sig.RetType
		if types.Equal(ret, types.Void) {
			if term.X != nil {
				return diag.New(diag.VerifyBadReturn, blockName(f, b), fmt.Errorf("void function returns a value"))
			}
			return nil
		}
		if term.X == nil {
			return diag.New(diag.VerifyBadReturn, blockName(f, b), fmt.Errorf("missing return value, want %v", ret))
		}
		if !types.Equal(term.X.Type(), ret) {
			return diag.New(diag.VerifyBadReturn, blockName(f, b), fmt.Errorf("return type %v, want %v", term.X.Type(), ret))
		}
	case *ir.TermCondBr:
		it, ok := term.Cond.Type().(*types.IntType)
		if !ok || it.BitSize != 1 {
			return diag.New(diag.VerifyBadOperand, blockName(f, b), fmt.Errorf("conditional branch on non-i1 value %v", term.Cond.Type()))
		}
	case *ir.TermBr:
		// Target is validated by reachability.
	default:
		return diag.New(diag.VerifyBadOperand, blockName(f, b), fmt.Errorf("unsupported terminator %T", term))
	}
	return nil
}

func checkInst(f *ir.Func, b *ir.Block, inst ir.Instruction) error {
	where := blockName(f, b)
	switch inst := inst.(type) {
	case *ir.InstLoad:
		pt, ok := inst.Src.Type().(*types.PointerType)
		if !ok {
			return diag.New(diag.VerifyBadOperand, where, fmt.Errorf("load from non-pointer %v", inst.Src.Type()))
		}
		if !types.Equal(pt.ElemType, inst.ElemType) {
			return diag.New(diag.VerifyBadOperand, where, fmt.Errorf("load of %v through %v", inst.ElemType, inst.Src.Type()))
		}
	case *ir.InstStore:
		pt, ok := inst.Dst.Type().(*types.PointerType)
		if !ok {
			return diag.New(diag.VerifyBadOperand, where, fmt.Errorf("store to non-pointer %v", inst.Dst.Type()))
		}
		if !types.Equal(pt.ElemType, inst.Src.Type()) {
			return diag.New(diag.VerifyBadOperand, where, fmt.Errorf("store of %v into %v", inst.Src.Type(), inst.Dst.Type()))
		}
	case *ir.InstGetElementPtr:
		if _, ok := inst.Src.Type().(*types.PointerType); !ok {
			return diag.New(diag.VerifyBadOperand, where, fmt.Errorf("getelementptr on non-pointer %v", inst.Src.Type()))
		}
	case *ir.InstCall:
		if err := checkCall(where, inst); err != nil {
			return err
		}
	}
	return nil
}

func checkCall(where string, call *ir.InstCall) error {
	pt, ok := call.Callee.Type().(*types.PointerType)
	if !ok {
		return diag.New(diag.VerifyBadCall, where, fmt.Errorf("call of non-function %v", call.Callee.Type()))
	}
	sig, ok := pt.ElemType.(*types.FuncType)
	if !ok {
		return diag.New(diag.VerifyBadCall, where, fmt.Errorf("call of non-function %v", call.Callee.Type()))
	}
	if sig.Variadic {
		if len(call.Args) < len(sig.Params) {
			return diag.New(diag.VerifyBadCall, where, fmt.Errorf("call with %d args, want at least %d", len(call.Args), len(sig.Params)))
		}
	} else if len(call.Args) != len(sig.Params) {
		return diag.New(diag.VerifyBadCall, where, fmt.Errorf("call with %d args, want %d", len(call.Args), len(sig.Params)))
	}
	for i, param := range sig.Params {
		if !types.Equal(call.Args[i].Type(), param) {
			return diag.New(diag.VerifyBadCall, where, fmt.Errorf("arg %d has type %v, want %v", i, call.Args[i].Type(), param))
		}
	}
	return nil
}

// checkReachability walks the branch graph from the entry block and rejects
// blocks no path reaches.
func checkReachability(f *ir.Func) error {
	reached := make(map[*ir.Block]bool, len(f.Blocks))
	work := []*ir.Block{f.Blocks[0]}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if reached[b] {
			continue
		}
		reached[b] = true
		for _, succ := range successors(b) {
			if !reached[succ] {
				work = append(work, succ)
			}
		}
	}
	for _, b := range f.Blocks {
		if !reached[b] {
			return diag.New(diag.VerifyUnreachable, blockName(f, b), fmt.Errorf("block unreachable from entry"))
		}
	}
	return nil
}

func successors(b *ir.Block) []*ir.Block {
	switch term := b.Term.(type) {
	case *ir.TermBr:
		if t, ok := term.Target.(*ir.Block); ok {
			return []*ir.Block{t}
		}
	case *ir.TermCondBr:
		var out []*ir.Block
		if t, ok := term.TargetTrue.(*ir.Block); ok {
			out = append(out, t)
		}
		if t, ok := term.TargetFalse.(*ir.Block); ok {
			out = append(out, t)
		}
		return out
	}
	return nil
}
