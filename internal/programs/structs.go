package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildStructs emits struct-member and array-element addressing through
// small helper functions, then swaps a point's fields in main.
//
//	struct point { int x; int y; };
//	int sum(int a, int b) { printf("result:%d\n", result); return a + b; }
//	void swap_point(struct point *p) { int tmp = p->x; p->x = p->y; p->y = tmp; }
//	void swap_array(int *arr, int i, int j) {
//	  int tmp = arr[i]; arr[i] = arr[j]; arr[j] = tmp;
//	}
//	int main() {
//	  struct point p = {10, 20};
//	  swap_point(&p);
//	  int arr[] = {1, 2, 3, 4};
//	  swap_array(arr, 0, 3);
//	  result = sum(p.x, p.y);
//	  return p.x;
//	}
func buildStructs(e *emit.Emitter) error {
	point := pointType(e)
	if err := defineCounters(e); err != nil {
		return err
	}

	intPtr := e.Types.PointerTo(types.I32)
	protos := []struct {
		name     string
		ret      types.Type
		params   []types.Type
		variadic bool
		body     emit.BodyFunc
	}{
		{"printf", types.I32, []types.Type{e.Types.PointerTo(types.I8)}, true, nil},
		{"sum", types.I32, []types.Type{types.I32, types.I32}, false, sumBody},
		{"swap_point", e.Types.Void(), []types.Type{e.Types.PointerTo(point)}, false, swapPointBody},
		{"swap_array", e.Types.Void(), []types.Type{intPtr, types.I32, types.I32}, false, swapArrayBody},
	}
	for _, p := range protos {
		if err := e.RegisterPrototype(p.name, p.ret, p.params, p.variadic); err != nil {
			return err
		}
		if p.body != nil {
			if err := e.RegisterBody(p.name, p.body); err != nil {
				return err
			}
		}
		if _, err := e.Declare(p.name); err != nil {
			return err
		}
		if p.body != nil {
			if err := e.DefineFunction(p.name); err != nil {
				return err
			}
		}
	}

	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		p, err := e.AllocateStorage(point, "p")
		if err != nil {
			return nil, err
		}
		xAddr, err := e.FieldAddress(p, 0)
		if err != nil {
			return nil, err
		}
		if err := e.Store(xAddr, intConst(10)); err != nil {
			return nil, err
		}
		yAddr, err := e.FieldAddress(p, 1)
		if err != nil {
			return nil, err
		}
		if err := e.Store(yAddr, intConst(20)); err != nil {
			return nil, err
		}
		if _, err := e.Call("swap_point", p); err != nil {
			return nil, err
		}

		arrType, err := e.Types.ArrayOf(4, types.I32)
		if err != nil {
			return nil, err
		}
		arr, err := e.AllocateStorage(arrType, "arr")
		if err != nil {
			return nil, err
		}
		for i := 0; i < 4; i++ {
			elemAddr, err := e.FieldAddress(arr, i)
			if err != nil {
				return nil, err
			}
			if err := e.Store(elemAddr, intConst(int64(i+1))); err != nil {
				return nil, err
			}
		}
		first, err := e.FieldAddress(arr, 0)
		if err != nil {
			return nil, err
		}
		if _, err := e.Call("swap_array", first, intConst(0), intConst(3)); err != nil {
			return nil, err
		}

		xValue, err := e.Load(xAddr)
		if err != nil {
			return nil, err
		}
		yValue, err := e.Load(yAddr)
		if err != nil {
			return nil, err
		}
		total, err := e.Call("sum", xValue, yValue)
		if err != nil {
			return nil, err
		}
		if err := e.StoreGlobal("result", total); err != nil {
			return nil, err
		}
		return e.Load(xAddr)
	})
}

// sumBody reports the running result global and returns a + b.
func sumBody(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
	format, err := e.StringPtr("result:%d\n", "fmt_result")
	if err != nil {
		return nil, err
	}
	resultValue, err := e.LoadGlobal("result")
	if err != nil {
		return nil, err
	}
	if _, err := e.Call("printf", format, resultValue); err != nil {
		return nil, err
	}
	a, err := e.Load(params[0])
	if err != nil {
		return nil, err
	}
	b, err := e.Load(params[1])
	if err != nil {
		return nil, err
	}
	return e.AddNSW(a, b)
}

// swapPointBody swaps the x and y fields of the point the parameter points
// at. The parameter cell holds a point pointer, so field access goes through
// the lvalue/rvalue pair that loads the aggregate pointer first.
func swapPointBody(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
	tmp, err := e.AllocateStorage(types.I32, "tmp")
	if err != nil {
		return nil, err
	}
	xValue, err := e.FieldRValue(params[0], 0)
	if err != nil {
		return nil, err
	}
	if err := e.Store(tmp, xValue); err != nil {
		return nil, err
	}
	yValue, err := e.FieldRValue(params[0], 1)
	if err != nil {
		return nil, err
	}
	xAddr, err := e.FieldLValue(params[0], 0)
	if err != nil {
		return nil, err
	}
	if err := e.Store(xAddr, yValue); err != nil {
		return nil, err
	}
	tmpValue, err := e.Load(tmp)
	if err != nil {
		return nil, err
	}
	yAddr, err := e.FieldLValue(params[0], 1)
	if err != nil {
		return nil, err
	}
	if err := e.Store(yAddr, tmpValue); err != nil {
		return nil, err
	}
	return nil, nil
}

// swapArrayBody swaps arr[i] and arr[j]. Element addresses are recomputed
// for each access, matching one address computation per subscript expression.
func swapArrayBody(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
	tmp, err := e.AllocateStorage(types.I32, "tmp")
	if err != nil {
		return nil, err
	}
	iAddr, err := e.ElementAddress(params[0], params[1])
	if err != nil {
		return nil, err
	}
	iValue, err := e.Load(iAddr)
	if err != nil {
		return nil, err
	}
	if err := e.Store(tmp, iValue); err != nil {
		return nil, err
	}
	jAddr, err := e.ElementAddress(params[0], params[2])
	if err != nil {
		return nil, err
	}
	jValue, err := e.Load(jAddr)
	if err != nil {
		return nil, err
	}
	iAddr2, err := e.ElementAddress(params[0], params[1])
	if err != nil {
		return nil, err
	}
	if err := e.Store(iAddr2, jValue); err != nil {
		return nil, err
	}
	tmpValue, err := e.Load(tmp)
	if err != nil {
		return nil, err
	}
	jAddr2, err := e.ElementAddress(params[0], params[2])
	if err != nil {
		return nil, err
	}
	if err := e.Store(jAddr2, tmpValue); err != nil {
		return nil, err
	}
	return nil, nil
}
