package emit

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
)

// DefineGlobal defines a global variable whose declared type is the
// initializer's own type. A global's effective type is fixed forever at its
// first definition; defining the same name twice is an error. Use
// RedefineGlobal when overwriting is the intent.
func (e *Emitter) DefineGlobal(name string, init constant.Constant) (*ir.Global, error) {
	return e.DefineGlobalTyped(init.Type(), name, init)
}

// DefineGlobalTyped defines a global variable with an explicit declared type.
func (e *Emitter) DefineGlobalTyped(typ types.Type, name string, init constant.Constant) (*ir.Global, error) {
	if _, ok := e.globals[name]; ok {
		return nil, diag.New(diag.UseGlobalRedefined, name, diag.ErrGlobalRedefined)
	}
	if !types.Equal(typ, init.Type()) {
		return nil, diag.New(diag.TypeStoreMismatch, name, diag.ErrStoreTypeMismatch)
	}
	g := e.Mod.NewGlobalDef(name, init)
	e.globals[name] = g
	return g, nil
}

// RedefineGlobal deliberately replaces the initializer (and with it the
// type-bearing identity) of an existing global. The name is the point: the
// old emitter did this silently through getOrInsert semantics.
func (e *Emitter) RedefineGlobal(name string, init constant.Constant) (*ir.Global, error) {
	g, ok := e.globals[name]
	if !ok {
		return e.DefineGlobal(name, init)
	}
	g.Init = init
	g.ContentType = init.Type()
	g.Typ = nil // recomputed from ContentType on next Type() call
	return g, nil
}

// Global looks up a defined global variable.
func (e *Emitter) Global(name string) (*ir.Global, error) {
	g, ok := e.globals[name]
	if !ok {
		return nil, diag.New(diag.NameUnknownGlobal, name, diag.ErrUnknownGlobal)
	}
	return g, nil
}

// LoadGlobal loads the current value of the named global. The pointee type
// comes from the global's declared content type, which DefineGlobal pinned
// to the first initializer.
func (e *Emitter) LoadGlobal(name string) (value.Value, error) {
	g, err := e.Global(name)
	if err != nil {
		return nil, err
	}
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	return blk.NewLoad(g.ContentType, g), nil
}

// StoreGlobal stores v into the named global.
func (e *Emitter) StoreGlobal(name string, v value.Value) error {
	g, err := e.Global(name)
	if err != nil {
		return err
	}
	return e.Store(g, v)
}

// DefineConstant defines a function-scoped private constant, named
// __constant.<function>.<name> after the function owning the cursor.
func (e *Emitter) DefineConstant(name string, init constant.Constant) (*ir.Global, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	constName := fmt.Sprintf("__constant.%s.%s", blk.Parent.Name(), name)
	g, err := e.DefineGlobal(constName, init)
	if err != nil {
		return nil, err
	}
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	return g, nil
}

// StringPtr defines a private constant NUL-terminated character array named
// .<name> and returns its decay to a pointer to the first character.
func (e *Emitter) StringPtr(content, name string) (value.Value, error) {
	g, err := e.StringConstant(content, name)
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(types.I64, 0)
	gep := constant.NewGetElementPtr(g.ContentType, g, zero, zero)
	gep.InBounds = true
	return gep, nil
}

// StringConstant defines the backing array global for a string literal.
func (e *Emitter) StringConstant(content, name string) (*ir.Global, error) {
	init := constant.NewCharArrayFromString(content + "\x00")
	g, err := e.DefineGlobal("."+name, init)
	if err != nil {
		return nil, err
	}
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	return g, nil
}
