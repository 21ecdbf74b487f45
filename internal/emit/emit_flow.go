package emit

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// Control-flow construction for the two loop forms and the two-armed
// conditional. The builder always terminates the blocks it creates; the
// callbacks run with the cursor already positioned and may emit anything the
// protocol allows. There is no break/continue; the construct set never
// needs an early exit.

// LoopSpec describes a pre-test counting loop. Cond runs in the condition
// block and yields the i1 predicate. Body runs in the body block. Post, when
// non-nil, runs in a separate increment block the body falls through to (the
// for-form); when nil the body branches straight back to the condition (the
// while-form).
type LoopSpec struct {
	Cond func(e *Emitter) (value.Value, error)
	Body func(e *Emitter) error
	Post func(e *Emitter) error
}

// CountingLoop wires condition, body, optional increment and end blocks into
// fn, branching out of the current block into the condition. On return the
// cursor sits in the end block.
func (e *Emitter) CountingLoop(fn *ir.Func, spec LoopSpec) error {
	entry, err := e.block()
	if err != nil {
		return err
	}
	condition := fn.NewBlock("condition")
	body := fn.NewBlock("body")
	var increment *ir.Block
	if spec.Post != nil {
		increment = fn.NewBlock("increment")
	}
	end := fn.NewBlock("end")

	entry.NewBr(condition)

	e.SetCursor(condition)
	pred, err := spec.Cond(e)
	if err != nil {
		return err
	}
	e.cur.NewCondBr(pred, body, end)

	e.SetCursor(body)
	if err := spec.Body(e); err != nil {
		return err
	}
	if increment != nil {
		e.cur.NewBr(increment)
		e.SetCursor(increment)
		if err := spec.Post(e); err != nil {
			return err
		}
	}
	e.cur.NewBr(condition)

	e.SetCursor(end)
	return nil
}

// If wires a two-armed conditional: condition in the current block, then and
// else arms, and a merge block the cursor ends up in. A nil otherwise arm
// produces the one-armed form branching straight to merge.
func (e *Emitter) If(fn *ir.Func, cond func(e *Emitter) (value.Value, error), then func(e *Emitter) error, otherwise func(e *Emitter) error) error {
	if _, err := e.block(); err != nil {
		return err
	}
	pred, err := cond(e)
	if err != nil {
		return err
	}
	thenBlk := fn.NewBlock("then")
	var elseBlk *ir.Block
	if otherwise != nil {
		elseBlk = fn.NewBlock("else")
	}
	merge := fn.NewBlock("merge")
	if elseBlk == nil {
		elseBlk = merge
	}
	e.cur.NewCondBr(pred, thenBlk, elseBlk)

	e.SetCursor(thenBlk)
	if err := then(e); err != nil {
		return err
	}
	e.cur.NewBr(merge)

	if otherwise != nil {
		e.SetCursor(elseBlk)
		if err := otherwise(e); err != nil {
			return err
		}
		e.cur.NewBr(merge)
	}

	e.SetCursor(merge)
	return nil
}
