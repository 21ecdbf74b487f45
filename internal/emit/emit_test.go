package emit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/diag"
)

// defineTestMain registers and defines an i32 main around body, failing the
// test on any emission error.
func defineTestMain(t *testing.T, e *Emitter, body BodyFunc) *ir.Func {
	t.Helper()
	if err := e.RegisterPrototype("main", types.I32, nil, false); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	if err := e.RegisterBody("main", body); err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	fn, err := e.Declare("main")
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := e.DefineFunction("main"); err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	return fn
}

func TestDefineGlobalRejectsDuplicate(t *testing.T) {
	e := New("t")
	if _, err := e.DefineGlobal("a", constant.NewInt(types.I32, 1)); err != nil {
		t.Fatalf("first definition: %v", err)
	}
	_, err := e.DefineGlobal("a", constant.NewInt(types.I32, 2))
	if !errors.Is(err, diag.ErrGlobalRedefined) {
		t.Fatalf("duplicate definition: got %v, want ErrGlobalRedefined", err)
	}
}

func TestRedefineGlobalReplacesInitializerAndType(t *testing.T) {
	e := New("t")
	g, err := e.RedefineGlobal("a", constant.NewInt(types.I32, 1))
	if err != nil {
		t.Fatalf("initial redefine: %v", err)
	}
	if !types.Equal(g.ContentType, types.I32) {
		t.Fatalf("content type = %v, want i32", g.ContentType)
	}
	g2, err := e.RedefineGlobal("a", constant.NewInt(types.I64, 7))
	if err != nil {
		t.Fatalf("redefine: %v", err)
	}
	if g2 != g {
		t.Fatalf("redefine created a second global")
	}
	if !types.Equal(g.ContentType, types.I64) {
		t.Fatalf("content type after redefine = %v, want i64", g.ContentType)
	}
	if len(e.Mod.Globals) != 1 {
		t.Fatalf("module has %d globals, want 1", len(e.Mod.Globals))
	}
}

func TestDefineGlobalTypedRejectsMismatch(t *testing.T) {
	e := New("t")
	_, err := e.DefineGlobalTyped(types.I64, "a", constant.NewInt(types.I32, 1))
	if !errors.Is(err, diag.ErrStoreTypeMismatch) {
		t.Fatalf("got %v, want ErrStoreTypeMismatch", err)
	}
}

func TestLoadGlobalRequiresCursor(t *testing.T) {
	e := New("t")
	if _, err := e.DefineGlobal("a", constant.NewInt(types.I32, 1)); err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	_, err := e.LoadGlobal("a")
	if !errors.Is(err, diag.ErrNoInsertionPoint) {
		t.Fatalf("got %v, want ErrNoInsertionPoint", err)
	}
}

func TestLoadGlobalUnknownName(t *testing.T) {
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		if _, err := e.LoadGlobal("missing"); !errors.Is(err, diag.ErrUnknownGlobal) {
			t.Fatalf("got %v, want ErrUnknownGlobal", err)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestStoreRejectsTypeMismatch(t *testing.T) {
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		cell, err := e.AllocateStorage(types.I32, "cell")
		if err != nil {
			t.Fatalf("AllocateStorage: %v", err)
		}
		err = e.Store(cell, constant.NewInt(types.I64, 1))
		if !errors.Is(err, diag.ErrStoreTypeMismatch) {
			t.Fatalf("got %v, want ErrStoreTypeMismatch", err)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestStoreRejectsNonAddress(t *testing.T) {
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		err := e.Store(constant.NewInt(types.I32, 1), constant.NewInt(types.I32, 2))
		if !errors.Is(err, diag.ErrNotAddress) {
			t.Fatalf("got %v, want ErrNotAddress", err)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestRegistryUsageOrder(t *testing.T) {
	e := New("t")

	if err := e.RegisterBody("f", nil); !errors.Is(err, diag.ErrNoPrototype) {
		t.Fatalf("body before prototype: got %v, want ErrNoPrototype", err)
	}
	if _, err := e.Declare("f"); !errors.Is(err, diag.ErrNoPrototype) {
		t.Fatalf("declare before prototype: got %v, want ErrNoPrototype", err)
	}

	if err := e.RegisterPrototype("f", types.I32, nil, false); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	if err := e.RegisterPrototype("f", types.I32, nil, false); !errors.Is(err, diag.ErrPrototypeRedefined) {
		t.Fatalf("duplicate prototype: got %v, want ErrPrototypeRedefined", err)
	}
	if err := e.DefineFunction("f"); !errors.Is(err, diag.ErrNotDeclared) {
		t.Fatalf("define before declare: got %v, want ErrNotDeclared", err)
	}
	if _, err := e.Declare("f"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := e.DefineFunction("f"); !errors.Is(err, diag.ErrNoBody) {
		t.Fatalf("define without body: got %v, want ErrNoBody", err)
	}
}

func TestDeclareIsIdempotent(t *testing.T) {
	e := New("t")
	if err := e.RegisterPrototype("printf", types.I32, []types.Type{e.Types.PointerTo(types.I8)}, true); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	fn1, err := e.Declare("printf")
	if err != nil {
		t.Fatalf("first Declare: %v", err)
	}
	fn2, err := e.Declare("printf")
	if err != nil {
		t.Fatalf("second Declare: %v", err)
	}
	if fn1 != fn2 {
		t.Fatalf("Declare created two functions")
	}
	if !fn1.Sig.Variadic {
		t.Fatalf("variadic flag not propagated")
	}
	if len(e.Mod.Funcs) != 1 {
		t.Fatalf("module has %d functions, want 1", len(e.Mod.Funcs))
	}
}

func TestDefineFunctionSpillsParams(t *testing.T) {
	e := New("t")
	if err := e.RegisterPrototype("id", types.I32, []types.Type{types.I32}, false); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	err := e.RegisterBody("id", func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		if len(params) != 1 {
			t.Fatalf("got %d spilled params, want 1", len(params))
		}
		pt, ok := params[0].Type().(*types.PointerType)
		if !ok || !types.Equal(pt.ElemType, types.I32) {
			t.Fatalf("spilled param has type %v, want i32*", params[0].Type())
		}
		return e.Load(params[0])
	})
	if err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if _, err := e.Declare("id"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := e.DefineFunction("id"); err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	if e.Cursor() != nil {
		t.Fatalf("cursor still set after DefineFunction")
	}
}

func TestDefineFunctionRejectsReturnMismatch(t *testing.T) {
	e := New("t")
	if err := e.RegisterPrototype("bad", types.I32, nil, false); err != nil {
		t.Fatalf("RegisterPrototype: %v", err)
	}
	err := e.RegisterBody("bad", func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		return constant.NewInt(types.I64, 1), nil
	})
	if err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if _, err := e.Declare("bad"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := e.DefineFunction("bad"); !errors.Is(err, diag.ErrReturnMismatch) {
		t.Fatalf("got %v, want ErrReturnMismatch", err)
	}
}

func TestCountingLoopBlockShape(t *testing.T) {
	tests := []struct {
		name string
		post bool
		want []string
	}{
		{"for form", true, []string{"entry", "condition", "body", "increment", "end"}},
		{"while form", false, []string{"entry", "condition", "body", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New("t")
			spec := LoopSpec{
				Cond: func(e *Emitter) (value.Value, error) {
					return e.ICmp(enum.IPredSLT, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 1))
				},
				Body: func(e *Emitter) error { return nil },
			}
			if tt.post {
				spec.Post = func(e *Emitter) error { return nil }
			}
			fn := defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
				if err := e.CountingLoop(fn, spec); err != nil {
					return nil, err
				}
				return constant.NewInt(types.I32, 0), nil
			})

			if len(fn.Blocks) != len(tt.want) {
				t.Fatalf("got %d blocks, want %d", len(fn.Blocks), len(tt.want))
			}
			for i, name := range tt.want {
				if fn.Blocks[i].Name() != name {
					t.Fatalf("block %d named %q, want %q", i, fn.Blocks[i].Name(), name)
				}
				if fn.Blocks[i].Term == nil {
					t.Fatalf("block %q has no terminator", name)
				}
			}
			cond := fn.Blocks[1]
			if _, ok := cond.Term.(*ir.TermCondBr); !ok {
				t.Fatalf("condition terminator is %T, want condbr", cond.Term)
			}
		})
	}
}

func TestIfShapes(t *testing.T) {
	always := func(e *Emitter) (value.Value, error) {
		return e.ICmp(enum.IPredEQ, constant.NewInt(types.I32, 1), constant.NewInt(types.I32, 1))
	}
	nop := func(e *Emitter) error { return nil }

	t.Run("two armed", func(t *testing.T) {
		e := New("t")
		fn := defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
			if err := e.If(fn, always, nop, nop); err != nil {
				return nil, err
			}
			return constant.NewInt(types.I32, 0), nil
		})
		want := []string{"entry", "then", "else", "merge"}
		if len(fn.Blocks) != len(want) {
			t.Fatalf("got %d blocks, want %d", len(fn.Blocks), len(want))
		}
		for i, name := range want {
			if fn.Blocks[i].Name() != name {
				t.Fatalf("block %d named %q, want %q", i, fn.Blocks[i].Name(), name)
			}
		}
	})

	t.Run("one armed", func(t *testing.T) {
		e := New("t")
		fn := defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
			if err := e.If(fn, always, nop, nil); err != nil {
				return nil, err
			}
			return constant.NewInt(types.I32, 0), nil
		})
		want := []string{"entry", "then", "merge"}
		if len(fn.Blocks) != len(want) {
			t.Fatalf("got %d blocks, want %d", len(fn.Blocks), len(want))
		}
		condbr, ok := fn.Blocks[0].Term.(*ir.TermCondBr)
		if !ok {
			t.Fatalf("entry terminator is %T, want condbr", fn.Blocks[0].Term)
		}
		if condbr.TargetFalse != fn.Blocks[2] {
			t.Fatalf("false edge does not reach merge")
		}
	})
}

func TestDefineConstantNaming(t *testing.T) {
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		g, err := e.DefineConstant("lut", constant.NewInt(types.I32, 9))
		if err != nil {
			t.Fatalf("DefineConstant: %v", err)
		}
		if g.Name() != "__constant.main.lut" {
			t.Fatalf("constant named %q", g.Name())
		}
		if !g.Immutable || g.Linkage != enum.LinkagePrivate {
			t.Fatalf("constant not private immutable: immutable=%v linkage=%v", g.Immutable, g.Linkage)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestStringPtr(t *testing.T) {
	e := New("t")
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		p, err := e.StringPtr("hi", "greet")
		if err != nil {
			t.Fatalf("StringPtr: %v", err)
		}
		pt, ok := p.Type().(*types.PointerType)
		if !ok || !types.Equal(pt.ElemType, types.I8) {
			t.Fatalf("StringPtr type = %v, want i8*", p.Type())
		}
		g, err := e.Global(".greet")
		if err != nil {
			t.Fatalf("backing global: %v", err)
		}
		at, ok := g.ContentType.(*types.ArrayType)
		if !ok || at.Len != 3 {
			t.Fatalf("backing array = %v, want [3 x i8]", g.ContentType)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestFieldAddressRange(t *testing.T) {
	e := New("t")
	st := e.Types.DefineStruct("struct.pair", types.I32, types.I32)
	defineTestMain(t, e, func(e *Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		cell, err := e.AllocateStorage(st, "p")
		if err != nil {
			t.Fatalf("AllocateStorage: %v", err)
		}
		if _, err := e.FieldAddress(cell, 1); err != nil {
			t.Fatalf("in-range field: %v", err)
		}
		if _, err := e.FieldAddress(cell, 2); !errors.Is(err, diag.ErrFieldOutOfRange) {
			t.Fatalf("out-of-range field: got %v, want ErrFieldOutOfRange", err)
		}
		scalar, err := e.AllocateStorage(types.I32, "s")
		if err != nil {
			t.Fatalf("AllocateStorage: %v", err)
		}
		if _, err := e.FieldAddress(scalar, 0); !errors.Is(err, diag.ErrNotAggregate) {
			t.Fatalf("scalar field: got %v, want ErrNotAggregate", err)
		}
		return constant.NewInt(types.I32, 0), nil
	})
}

func TestHostTriple(t *testing.T) {
	triple := HostTriple()
	if triple == "" {
		t.Fatalf("empty host triple")
	}
	if !strings.Contains(triple, "-") {
		t.Fatalf("host triple %q has no separators", triple)
	}
}

func TestWriteFile(t *testing.T) {
	e := New("t")
	if _, err := e.DefineGlobal("a", constant.NewInt(types.I32, 1)); err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "t.ll")
	if err := e.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != e.String() {
		t.Fatalf("file content differs from serialized module")
	}
	if err := e.WriteFile(filepath.Join(path, "nested.ll")); err == nil {
		t.Fatalf("expected error writing under a file path")
	}
}

func TestCursorStack(t *testing.T) {
	e := New("t")
	fn := e.Mod.NewFunc("scratch", types.Void)
	a := e.NewBlock(fn, "a")
	b := e.NewBlock(fn, "b")
	e.SetCursor(a)
	e.PushCursor(b)
	if e.Cursor() != b {
		t.Fatalf("push did not move the cursor")
	}
	e.PopCursor()
	if e.Cursor() != a {
		t.Fatalf("pop did not restore the cursor")
	}
	e.PopCursor() // empty stack is a no-op
	if e.Cursor() != a {
		t.Fatalf("pop on empty stack moved the cursor")
	}
}
