package emit

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
	"irforge/internal/verify"
)

// DefineFunction attaches a body to the declared function name: it creates
// the entry block, spills each incoming argument into stack storage, runs
// the registered body routine and emits the matching return. By-pointer
// parameters are ordinary by-value parameters whose type happens to be a
// pointer; there is no separate calling convention.
//
// The completed function is verified immediately; a verification failure is
// returned and the caller treats it as fatal.
func (e *Emitter) DefineFunction(name string) error {
	rec, ok := e.funcs[name]
	if !ok {
		return diag.New(diag.UseNoPrototype, name, diag.ErrNoPrototype)
	}
	if rec.fn == nil {
		return diag.New(diag.UseNotDeclared, name, diag.ErrNotDeclared)
	}
	if rec.body == nil {
		return diag.New(diag.UseNoBody, name, diag.ErrNoBody)
	}

	entry := rec.fn.NewBlock("entry")
	e.SetCursor(entry)

	params := make([]value.Value, len(rec.fn.Params))
	for i, p := range rec.fn.Params {
		cell := entry.NewAlloca(p.Type())
		cell.SetName(fmt.Sprintf("param_%d", i))
		entry.NewStore(p, cell)
		params[i] = cell
	}

	result, err := rec.body(e, rec.fn, params)
	if err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}

	if err := e.emitReturn(rec.fn.Sig.RetType, result); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	e.SetCursor(nil)

	if err := verify.Function(rec.fn); err != nil {
		return fmt.Errorf("verify %s: %w", name, err)
	}
	return nil
}

// emitReturn terminates the current block with the return matching the
// declared type. A non-void body must produce a value of the declared type;
// a void body may return a value and it is dropped.
func (e *Emitter) emitReturn(ret types.Type, result value.Value) error {
	blk, err := e.block()
	if err != nil {
		return err
	}
	if types.Equal(ret, types.Void) {
		blk.NewRet(nil)
		return nil
	}
	if result == nil || !types.Equal(result.Type(), ret) {
		return diag.New(diag.TypeReturnMismatch, ret.String(), diag.ErrReturnMismatch)
	}
	blk.NewRet(result)
	return nil
}
