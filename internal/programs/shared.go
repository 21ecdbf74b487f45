package programs

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"irforge/internal/emit"
	"irforge/internal/typecat"
)

// Shared global sets used by several catalog entries. The programs differ in
// their statement lists, not in the data they operate on.

// intConst is the i32 constant shorthand the statement lists lean on.
func intConst(v int64) *constant.Int {
	return constant.NewInt(types.I32, v)
}

// defineCounters defines the start/end/result triple the loop and pointer
// programs work over.
func defineCounters(e *emit.Emitter) error {
	if _, err := e.DefineGlobal("start", constant.NewInt(types.I32, 1)); err != nil {
		return err
	}
	if _, err := e.DefineGlobal("end", constant.NewInt(types.I32, 10)); err != nil {
		return err
	}
	_, err := e.DefineGlobal("result", constant.NewInt(types.I32, 0))
	return err
}

// defineScalarInts defines one global per supported integer width, plus
// unsigned views sharing the same storage widths.
func defineScalarInts(e *emit.Emitter) error {
	ints := []struct {
		name  string
		typ   *types.IntType
		value int64
	}{
		{"i_8", types.I8, 1},
		{"i_16", types.I16, 2},
		{"i_32", types.I32, 3},
		{"i_64", types.I64, 4},
		{"ui_8", types.I8, 1},
		{"ui_32", types.I32, 3},
	}
	for _, g := range ints {
		if _, err := e.DefineGlobalTyped(g.typ, g.name, constant.NewInt(g.typ, g.value)); err != nil {
			return err
		}
	}
	return nil
}

// defineFloats defines one global per floating-point class.
func defineFloats(e *emit.Emitter) error {
	if _, err := e.DefineGlobal("f", constant.NewFloat(e.Types.Float(typecat.Single), 1.0)); err != nil {
		return err
	}
	if _, err := e.DefineGlobal("d", constant.NewFloat(e.Types.Float(typecat.Double), 2.0)); err != nil {
		return err
	}
	_, err := e.DefineGlobal("ld", constant.NewFloat(e.Types.Float(typecat.Extended), 3.0))
	return err
}

// intArrayConst builds the [1,2,3,4] initializer used across the catalog.
func intArrayConst(e *emit.Emitter) (*types.ArrayType, constant.Constant, error) {
	arrType, err := e.Types.ArrayOf(4, types.I32)
	if err != nil {
		return nil, nil, err
	}
	init := constant.NewArray(arrType,
		constant.NewInt(types.I32, 1),
		constant.NewInt(types.I32, 2),
		constant.NewInt(types.I32, 3),
		constant.NewInt(types.I32, 4),
	)
	return arrType, init, nil
}

// pointType defines (or returns) the named struct.point {i32, i32}.
func pointType(e *emit.Emitter) *types.StructType {
	return e.Types.DefineStruct("struct.point", types.I32, types.I32)
}

// pointConst builds a struct.point initializer.
func pointConst(e *emit.Emitter, x, y int64) (*types.StructType, constant.Constant) {
	st := pointType(e)
	return st, constant.NewStruct(st, constant.NewInt(types.I32, x), constant.NewInt(types.I32, y))
}

// defineMain registers, declares and defines the i32 main with the given
// statement-list routine.
func defineMain(e *emit.Emitter, body emit.BodyFunc) error {
	if err := e.RegisterPrototype("main", types.I32, nil, false); err != nil {
		return err
	}
	if err := e.RegisterBody("main", body); err != nil {
		return err
	}
	if _, err := e.Declare("main"); err != nil {
		return err
	}
	return e.DefineFunction("main")
}
