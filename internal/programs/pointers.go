package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildPointers emits a by-pointer swap. The callee receives the addresses of
// two globals and swaps their contents through the indirection.
//
//	int start = 1, end = 10, result = 0;
//	void swap_ptr(int *a, int *b) { int tmp = *a; *a = *b; *b = tmp; }
//	int main() {
//	  swap_ptr(&start, &end);
//	  printf("start:%d\n", start);
//	  return start;
//	}
func buildPointers(e *emit.Emitter) error {
	if err := defineCounters(e); err != nil {
		return err
	}

	intPtr := e.Types.PointerTo(types.I32)
	if err := e.RegisterPrototype("printf", types.I32, []types.Type{e.Types.PointerTo(types.I8)}, true); err != nil {
		return err
	}
	if _, err := e.Declare("printf"); err != nil {
		return err
	}

	if err := e.RegisterPrototype("swap_ptr", e.Types.Void(), []types.Type{intPtr, intPtr}, false); err != nil {
		return err
	}
	if err := e.RegisterBody("swap_ptr", swapPtrBody); err != nil {
		return err
	}
	if _, err := e.Declare("swap_ptr"); err != nil {
		return err
	}
	if err := e.DefineFunction("swap_ptr"); err != nil {
		return err
	}

	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		startGlobal, err := e.Global("start")
		if err != nil {
			return nil, err
		}
		endGlobal, err := e.Global("end")
		if err != nil {
			return nil, err
		}
		if _, err := e.Call("swap_ptr", startGlobal, endGlobal); err != nil {
			return nil, err
		}
		format, err := e.StringPtr("start:%d\n", "fmt_start")
		if err != nil {
			return nil, err
		}
		startValue, err := e.LoadGlobal("start")
		if err != nil {
			return nil, err
		}
		if _, err := e.Call("printf", format, startValue); err != nil {
			return nil, err
		}
		return e.LoadGlobal("start")
	})
}

// swapPtrBody swaps the pointees of the two pointer parameters through a
// stack temporary. Each parameter cell holds a pointer, so the rvalue read
// is a double load and the write goes through one loaded indirection.
func swapPtrBody(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
	tmp, err := e.AllocateStorage(types.I32, "tmp")
	if err != nil {
		return nil, err
	}
	aValue, err := e.LoadThroughPointer(params[0])
	if err != nil {
		return nil, err
	}
	if err := e.Store(tmp, aValue); err != nil {
		return nil, err
	}
	bValue, err := e.LoadThroughPointer(params[1])
	if err != nil {
		return nil, err
	}
	aPtr, err := e.Load(params[0])
	if err != nil {
		return nil, err
	}
	if err := e.Store(aPtr, bValue); err != nil {
		return nil, err
	}
	tmpValue, err := e.Load(tmp)
	if err != nil {
		return nil, err
	}
	bPtr, err := e.Load(params[1])
	if err != nil {
		return nil, err
	}
	if err := e.Store(bPtr, tmpValue); err != nil {
		return nil, err
	}
	return nil, nil
}
