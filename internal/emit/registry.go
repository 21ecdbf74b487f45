package emit

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
)

// Prototype is a function signature registered ahead of declaration.
// Immutable after registration.
type Prototype struct {
	Ret      types.Type
	Params   []types.Type
	Variadic bool
}

// BodyFunc emits the statement list of one function. params holds the stack
// addresses the incoming arguments were spilled to, in declaration order.
// The returned value becomes the function result; bodies of void functions
// may return a value anyway and it is ignored.
type BodyFunc func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error)

// funcRecord keys everything known about a function under one name, so a
// define-without-declare shows up as a nil field instead of a disagreement
// between independent tables.
type funcRecord struct {
	proto *Prototype
	body  BodyFunc
	fn    *ir.Func
}

// RegisterPrototype records the signature for name. Must run before Declare;
// registering the same name twice is a usage error.
func (e *Emitter) RegisterPrototype(name string, ret types.Type, params []types.Type, variadic bool) error {
	if _, ok := e.funcs[name]; ok {
		return diag.New(diag.UsePrototypeRedefined, name, diag.ErrPrototypeRedefined)
	}
	e.funcs[name] = &funcRecord{proto: &Prototype{Ret: ret, Params: params, Variadic: variadic}}
	return nil
}

// RegisterBody attaches the body-emission routine for name. The prototype
// must already be registered.
func (e *Emitter) RegisterBody(name string, body BodyFunc) error {
	rec, ok := e.funcs[name]
	if !ok {
		return diag.New(diag.UseNoPrototype, name, diag.ErrNoPrototype)
	}
	if rec.body != nil {
		return diag.New(diag.UseBodyRedefined, name, diag.ErrBodyRedefined)
	}
	rec.body = body
	return nil
}

// Declare creates the function in the module from its registered prototype.
// Idempotent: once declared, later calls return the existing function.
func (e *Emitter) Declare(name string) (*ir.Func, error) {
	rec, ok := e.funcs[name]
	if !ok {
		return nil, diag.New(diag.UseNoPrototype, name, diag.ErrNoPrototype)
	}
	if rec.fn != nil {
		return rec.fn, nil
	}
	params := make([]*ir.Param, len(rec.proto.Params))
	for i, pt := range rec.proto.Params {
		params[i] = ir.NewParam("", pt)
	}
	fn := e.Mod.NewFunc(name, rec.proto.Ret, params...)
	fn.Sig.Variadic = rec.proto.Variadic
	rec.fn = fn
	return fn, nil
}

// Func returns the declared function for name.
func (e *Emitter) Func(name string) (*ir.Func, error) {
	rec, ok := e.funcs[name]
	if !ok || rec.fn == nil {
		return nil, diag.New(diag.NameUnknownFunction, name, diag.ErrUnknownFunction)
	}
	return rec.fn, nil
}

// Call emits a call to the declared function name in the current block.
func (e *Emitter) Call(name string, args ...value.Value) (value.Value, error) {
	blk, err := e.block()
	if err != nil {
		return nil, err
	}
	fn, err := e.Func(name)
	if err != nil {
		return nil, err
	}
	return blk.NewCall(fn, args...), nil
}

// block returns the active insertion point or a usage error.
func (e *Emitter) block() (*ir.Block, error) {
	if e.cur == nil {
		return nil, diag.New(diag.UseNoInsertionPoint, "", diag.ErrNoInsertionPoint)
	}
	return e.cur, nil
}
