package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildConstants emits function-scoped private constants (an array, a
// struct and a string literal) from inside main's body, then reads a plain
// global back.
//
//	int global_a = 1;
//	int main() {
//	  const int int_array[] = {1, 2, 3, 4};
//	  const struct point point = {11, 12};
//	  char *string = "hello";
//	  return global_a;
//	}
func buildConstants(e *emit.Emitter) error {
	if _, err := e.DefineGlobal("global_a", intConst(1)); err != nil {
		return err
	}
	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		_, arrInit, err := intArrayConst(e)
		if err != nil {
			return nil, err
		}
		if _, err := e.DefineConstant("int_array", arrInit); err != nil {
			return nil, err
		}
		_, pointInit := pointConst(e, 11, 12)
		if _, err := e.DefineConstant("point", pointInit); err != nil {
			return nil, err
		}
		if _, err := e.StringPtr("hello", "string"); err != nil {
			return nil, err
		}
		return e.LoadGlobal("global_a")
	})
}
