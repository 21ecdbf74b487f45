// Package emit is the emission engine: it owns the module under
// construction, the function registry and the single insertion cursor, and
// exposes the lvalue/rvalue protocol, aggregate addressing and control-flow
// builders the showcase programs are written against.
package emit

import (
	"fmt"
	"os"

	"github.com/llir/llvm/ir"

	"irforge/internal/typecat"
)

// Emitter assembles one module. Exactly one emitter exists per emission run;
// it is mutated in place and never shared across goroutines.
type Emitter struct {
	Mod   *ir.Module
	Types *typecat.Catalog

	funcs   map[string]*funcRecord
	globals map[string]*ir.Global

	cur   *ir.Block
	saved []*ir.Block
}

// New creates an emitter with a fresh module named name.
func New(name string) *Emitter {
	mod := ir.NewModule()
	mod.SourceFilename = name
	return &Emitter{
		Mod:     mod,
		Types:   typecat.New(mod),
		funcs:   make(map[string]*funcRecord, 8),
		globals: make(map[string]*ir.Global, 16),
	}
}

// SetTargetTriple tags the module with a target identifier. The triple is
// descriptive only; nothing in the emission logic consults it.
func (e *Emitter) SetTargetTriple(triple string) {
	e.Mod.TargetTriple = triple
}

// NewBlock appends a block to fn without moving the cursor.
func (e *Emitter) NewBlock(fn *ir.Func, name string) *ir.Block {
	return fn.NewBlock(name)
}

// SetCursor makes blk the active insertion point.
func (e *Emitter) SetCursor(blk *ir.Block) { e.cur = blk }

// Cursor returns the active insertion point, or nil between functions.
func (e *Emitter) Cursor() *ir.Block { return e.cur }

// PushCursor saves the current insertion point and moves to blk. Interleaved
// emission must restore with PopCursor; the cursor is the one piece of
// shared state the protocol threads through every operation.
func (e *Emitter) PushCursor(blk *ir.Block) {
	e.saved = append(e.saved, e.cur)
	e.cur = blk
}

// PopCursor restores the most recently pushed insertion point.
func (e *Emitter) PopCursor() {
	if n := len(e.saved); n > 0 {
		e.cur = e.saved[n-1]
		e.saved = e.saved[:n-1]
	}
}

// String serializes the module to its textual IR form.
func (e *Emitter) String() string { return e.Mod.String() }

// WriteFile serializes the module to path.
func (e *Emitter) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(e.Mod.String()), 0o644); err != nil {
		return fmt.Errorf("write module: %w", err)
	}
	return nil
}
