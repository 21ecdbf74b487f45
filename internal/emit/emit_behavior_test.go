package emit

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/interp"
)

// Behavior tests: emit a function through the protocol, then evaluate it and
// observe the result.

func evalMain(t *testing.T, e *Emitter) int64 {
	t.Helper()
	got, err := interp.Run(e.Mod, "main")
	if err != nil {
		t.Fatalf("evaluate main: %v", err)
	}
	return got.Int
}

// emitSummingLoop defines main summing index over [start, end] with the
// for-form loop and returning the accumulated value.
func emitSummingLoop(t *testing.T, start, end int64) *Emitter {
	t.Helper()
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		index, err := e.AllocateStorage(types.I32, "index")
		if err != nil {
			return nil, err
		}
		if err := e.Store(index, constant.NewInt(types.I32, start)); err != nil {
			return nil, err
		}
		sum, err := e.AllocateStorage(types.I32, "sum")
		if err != nil {
			return nil, err
		}
		if err := e.Store(sum, constant.NewInt(types.I32, 0)); err != nil {
			return nil, err
		}
		err = e.CountingLoop(fn, LoopSpec{
			Cond: func(e *Emitter) (value.Value, error) {
				v, err := e.Load(index)
				if err != nil {
					return nil, err
				}
				return e.ICmp(enum.IPredSLE, v, constant.NewInt(types.I32, end))
			},
			Body: func(e *Emitter) error {
				s, err := e.Load(sum)
				if err != nil {
					return err
				}
				v, err := e.Load(index)
				if err != nil {
					return err
				}
				next, err := e.AddNSW(s, v)
				if err != nil {
					return err
				}
				return e.Store(sum, next)
			},
			Post: func(e *Emitter) error {
				next, err := e.Increment(index, 1)
				if err != nil {
					return err
				}
				return e.Store(index, next)
			},
		})
		if err != nil {
			return nil, err
		}
		return e.Load(sum)
	})
	return e
}

func TestCountingLoopTripCounts(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		want       int64
	}{
		{"ten trips", 1, 10, 55},
		{"one trip", 4, 4, 4},
		{"zero trips", 5, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := emitSummingLoop(t, tt.start, tt.end)
			if got := evalMain(t, e); got != tt.want {
				t.Fatalf("sum(%d..%d) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestFieldRoundTripEveryIndex(t *testing.T) {
	e := New("t")
	st := e.Types.DefineStruct("struct.triple", types.I32, types.I32, types.I32)
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		cell, err := e.AllocateStorage(st, "v")
		if err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			addr, err := e.FieldAddress(cell, i)
			if err != nil {
				return nil, err
			}
			if err := e.Store(addr, constant.NewInt(types.I32, int64(10*(i+1)))); err != nil {
				return nil, err
			}
		}
		var total value.Value = constant.NewInt(types.I32, 0)
		for i := 0; i < 3; i++ {
			addr, err := e.FieldAddress(cell, i)
			if err != nil {
				return nil, err
			}
			v, err := e.Load(addr)
			if err != nil {
				return nil, err
			}
			total, err = e.AddNSW(total, v)
			if err != nil {
				return nil, err
			}
		}
		return total, nil
	})
	if got := evalMain(t, e); got != 60 {
		t.Fatalf("field round trip sum = %d, want 60", got)
	}
}

func TestCompareWidensToReturnType(t *testing.T) {
	// a=1, b=2: a sgt b is false, widened to i32 0.
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		pred, err := e.ICmp(enum.IPredSGT, constant.NewInt(types.I32, 1), constant.NewInt(types.I32, 2))
		if err != nil {
			return nil, err
		}
		return e.ZExt(pred, types.I32)
	})
	if got := evalMain(t, e); got != 0 {
		t.Fatalf("1 sgt 2 widened = %d, want 0", got)
	}
}

func TestElementAddressLoadsThirdElement(t *testing.T) {
	e := New("t")
	arrType, err := e.Types.ArrayOf(4, types.I32)
	if err != nil {
		t.Fatalf("ArrayOf: %v", err)
	}
	init := constant.NewArray(arrType,
		constant.NewInt(types.I32, 1),
		constant.NewInt(types.I32, 2),
		constant.NewInt(types.I32, 3),
		constant.NewInt(types.I32, 4),
	)
	if _, err := e.DefineGlobalTyped(arrType, "arr", init); err != nil {
		t.Fatalf("DefineGlobalTyped: %v", err)
	}
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		// Decay the array global to an element pointer held in a cell,
		// then index it the way a subscripted parameter is.
		g, err := e.Global("arr")
		if err != nil {
			return nil, err
		}
		basePtr, err := e.FieldAddress(g, 0)
		if err != nil {
			return nil, err
		}
		baseCell, err := e.AllocateStorage(e.Types.PointerTo(types.I32), "base")
		if err != nil {
			return nil, err
		}
		if err := e.Store(baseCell, basePtr); err != nil {
			return nil, err
		}
		indexCell, err := e.AllocateStorage(types.I32, "i")
		if err != nil {
			return nil, err
		}
		if err := e.Store(indexCell, constant.NewInt(types.I32, 2)); err != nil {
			return nil, err
		}
		addr, err := e.ElementAddress(baseCell, indexCell)
		if err != nil {
			return nil, err
		}
		return e.Load(addr)
	})
	if got := evalMain(t, e); got != 3 {
		t.Fatalf("arr[2] = %d, want 3", got)
	}
}

func TestSwapThroughPointers(t *testing.T) {
	e := New("t")
	if _, err := e.DefineGlobal("x", constant.NewInt(types.I32, 1)); err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	if _, err := e.DefineGlobal("y", constant.NewInt(types.I32, 2)); err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	intPtr := e.Types.PointerTo(types.I32)
	if err := e.RegisterPrototype("swap", e.Types.Void(), []types.Type{intPtr, intPtr}, false); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	err := e.RegisterBody("swap", func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		tmp, err := e.AllocateStorage(types.I32, "tmp")
		if err != nil {
			return nil, err
		}
		a, err := e.LoadThroughPointer(params[0])
		if err != nil {
			return nil, err
		}
		if err := e.Store(tmp, a); err != nil {
			return nil, err
		}
		b, err := e.LoadThroughPointer(params[1])
		if err != nil {
			return nil, err
		}
		aPtr, err := e.Load(params[0])
		if err != nil {
			return nil, err
		}
		if err := e.Store(aPtr, b); err != nil {
			return nil, err
		}
		tv, err := e.Load(tmp)
		if err != nil {
			return nil, err
		}
		bPtr, err := e.Load(params[1])
		if err != nil {
			return nil, err
		}
		if err := e.Store(bPtr, tv); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if _, err := e.Declare("swap"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := e.DefineFunction("swap"); err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		gx, err := e.Global("x")
		if err != nil {
			return nil, err
		}
		gy, err := e.Global("y")
		if err != nil {
			return nil, err
		}
		if _, err := e.Call("swap", gx, gy); err != nil {
			return nil, err
		}
		return e.LoadGlobal("x")
	})

	machine, err := interp.New(e.Mod)
	if err != nil {
		t.Fatalf("interp.New: %v", err)
	}
	got, err := machine.Run("main")
	if err != nil {
		t.Fatalf("run main: %v", err)
	}
	if got.Int != 2 {
		t.Fatalf("x after swap = %d, want 2", got.Int)
	}
	y, err := machine.GlobalValue("y")
	if err != nil {
		t.Fatalf("GlobalValue: %v", err)
	}
	if y.Int != 1 {
		t.Fatalf("y after swap = %d, want 1", y.Int)
	}
}
