package interp

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

func TestRunAddFunction(t *testing.T) {
	m := ir.NewModule()
	x := ir.NewParam("x", types.I32)
	y := ir.NewParam("y", types.I32)
	f := m.NewFunc("add", types.I32, x, y)
	entry := f.NewBlock("entry")
	sum := entry.NewAdd(x, y)
	entry.NewRet(sum)

	got, err := Run(m, "add", Value{Kind: KindInt, Int: 2}, Value{Kind: KindInt, Int: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Kind != KindInt || got.Int != 5 {
		t.Fatalf("add(2, 3) = %+v, want 5", got)
	}
}

func TestRunAllocaRoundTrip(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("f", types.I32)
	entry := f.NewBlock("entry")
	cell := entry.NewAlloca(types.I32)
	entry.NewStore(constant.NewInt(types.I32, 42), cell)
	loaded := entry.NewLoad(types.I32, cell)
	entry.NewRet(loaded)

	got, err := Run(m, "f")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Int != 42 {
		t.Fatalf("got %d, want 42", got.Int)
	}
}

func TestGlobalSideEffect(t *testing.T) {
	m := ir.NewModule()
	g := m.NewGlobalDef("counter", constant.NewInt(types.I32, 7))
	f := m.NewFunc("bump", types.Void)
	entry := f.NewBlock("entry")
	old := entry.NewLoad(types.I32, g)
	next := entry.NewAdd(old, constant.NewInt(types.I32, 1))
	entry.NewStore(next, g)
	entry.NewRet(nil)

	machine, err := New(m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := machine.Run("bump"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := machine.GlobalValue("counter")
	if err != nil {
		t.Fatalf("GlobalValue: %v", err)
	}
	if got.Int != 8 {
		t.Fatalf("counter = %d, want 8", got.Int)
	}
}

func TestArrayElementThroughGEP(t *testing.T) {
	m := ir.NewModule()
	arrType := types.NewArray(4, types.I32)
	init := constant.NewArray(arrType,
		constant.NewInt(types.I32, 10),
		constant.NewInt(types.I32, 20),
		constant.NewInt(types.I32, 30),
		constant.NewInt(types.I32, 40),
	)
	g := m.NewGlobalDef("arr", init)

	f := m.NewFunc("third", types.I32)
	entry := f.NewBlock("entry")
	addr := entry.NewGetElementPtr(arrType, g, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 2))
	loaded := entry.NewLoad(types.I32, addr)
	entry.NewRet(loaded)

	got, err := Run(m, "third")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Int != 30 {
		t.Fatalf("arr[2] = %d, want 30", got.Int)
	}
}

func TestBranching(t *testing.T) {
	// max(a, b) via condbr.
	build := func() *ir.Module {
		m := ir.NewModule()
		a := ir.NewParam("a", types.I32)
		b := ir.NewParam("b", types.I32)
		f := m.NewFunc("max", types.I32, a, b)
		entry := f.NewBlock("entry")
		bigger := f.NewBlock("bigger")
		smaller := f.NewBlock("smaller")
		cond := entry.NewICmp(enum.IPredSGT, a, b)
		entry.NewCondBr(cond, bigger, smaller)
		bigger.NewRet(a)
		smaller.NewRet(b)
		return m
	}
	tests := []struct {
		a, b, want int64
	}{
		{1, 2, 2},
		{5, 3, 5},
		{4, 4, 4},
	}
	for _, tt := range tests {
		got, err := Run(build(), "max", Value{Kind: KindInt, Int: tt.a}, Value{Kind: KindInt, Int: tt.b})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got.Int != tt.want {
			t.Fatalf("max(%d, %d) = %d, want %d", tt.a, tt.b, got.Int, tt.want)
		}
	}
}

func TestNullDereferenceFails(t *testing.T) {
	m := ir.NewModule()
	f := m.NewFunc("f", types.I32)
	entry := f.NewBlock("entry")
	null := constant.NewNull(types.NewPointer(types.I32))
	loaded := entry.NewLoad(types.I32, null)
	entry.NewRet(loaded)

	if _, err := Run(m, "f"); err == nil {
		t.Fatalf("expected error for null dereference")
	}
}

func TestUnknownEntry(t *testing.T) {
	if _, err := Run(ir.NewModule(), "missing"); err == nil {
		t.Fatalf("expected error for unknown entry")
	}
}

func TestPrintfIsModeled(t *testing.T) {
	m := ir.NewModule()
	printf := m.NewFunc("printf", types.I32, ir.NewParam("", types.NewPointer(types.I8)))
	printf.Sig.Variadic = true

	str := m.NewGlobalDef(".fmt", constant.NewCharArrayFromString("x\x00"))
	f := m.NewFunc("f", types.I32)
	entry := f.NewBlock("entry")
	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(str.ContentType, str, zero, zero)
	call := entry.NewCall(printf, ptr)
	entry.NewRet(call)

	got, err := Run(m, "f")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Int != 0 {
		t.Fatalf("printf returned %d, want 0", got.Int)
	}
}

func TestSlotCount(t *testing.T) {
	tests := []struct {
		typ  types.Type
		want int
	}{
		{types.I32, 1},
		{types.NewPointer(types.I32), 1},
		{types.NewArray(4, types.I32), 4},
		{types.NewStruct(types.I32, types.I32), 2},
		{types.NewArray(2, types.NewStruct(types.I32, types.I32)), 4},
	}
	for _, tt := range tests {
		if got := slotCount(tt.typ); got != tt.want {
			t.Fatalf("slotCount(%v) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}
