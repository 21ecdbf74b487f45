package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildGlobals emits one global per construct kind and a main that reads
// back the 32-bit integer.
//
//	char i_8 = 1; short i_16 = 2; int i_32 = 3; long i_64 = 4;
//	float f = 1.0; double d = 2.0; long double ld = 3.0;
//	int arr[] = {1, 2, 3, 4};
//	int *i_p; char *c_p;
//	struct point { int x; int y; } point = {11, 12};
//	union ab { int a; float b; } u = {1};
//	int main() { return i_32; }
func buildGlobals(e *emit.Emitter) error {
	if err := defineScalarInts(e); err != nil {
		return err
	}
	if err := defineFloats(e); err != nil {
		return err
	}

	arrType, arrInit, err := intArrayConst(e)
	if err != nil {
		return err
	}
	if _, err := e.DefineGlobalTyped(arrType, "arr", arrInit); err != nil {
		return err
	}

	intPtr := e.Types.PointerTo(types.I32)
	if _, err := e.DefineGlobal("i_p", constant.NewNull(intPtr)); err != nil {
		return err
	}
	charPtr := e.Types.PointerTo(types.I8)
	if _, err := e.DefineGlobal("c_p", constant.NewNull(charPtr)); err != nil {
		return err
	}

	st, pointInit := pointConst(e, 11, 12)
	if _, err := e.DefineGlobalTyped(st, "point", pointInit); err != nil {
		return err
	}

	unionType := e.Types.DefineUnion("union.ab", types.I32, types.Float)
	unionInit := constant.NewStruct(unionType, constant.NewInt(types.I32, 1))
	if _, err := e.DefineGlobalTyped(unionType, "u", unionInit); err != nil {
		return err
	}

	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		return e.LoadGlobal("i_32")
	})
}
