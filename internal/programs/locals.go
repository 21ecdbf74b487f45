package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildLocals emits a stack local, assigns it a literal, overwrites it from
// a global and returns the reload.
//
//	int global_a = 1;
//	int main() {
//	  int local_b;
//	  local_b = 2;
//	  local_b = global_a;
//	  return local_b;
//	}
func buildLocals(e *emit.Emitter) error {
	if _, err := e.DefineGlobal("global_a", intConst(1)); err != nil {
		return err
	}
	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		localB, err := e.AllocateStorage(types.I32, "local_b")
		if err != nil {
			return nil, err
		}
		if err := e.Store(localB, intConst(2)); err != nil {
			return nil, err
		}
		globalA, err := e.LoadGlobal("global_a")
		if err != nil {
			return nil, err
		}
		if err := e.Store(localB, globalA); err != nil {
			return nil, err
		}
		return e.Load(localB)
	})
}
