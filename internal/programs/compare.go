package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
	"irforge/internal/typecat"
)

// buildCompare emits every comparison form over signed, unsigned and
// floating operand pairs. The results are intentionally unused; the program
// showcases the instruction forms, and main returns the first operand.
func buildCompare(e *emit.Emitter) error {
	if err := defineScalarInts(e); err != nil {
		return err
	}
	if err := defineFloats(e); err != nil {
		return err
	}
	pairs := []struct {
		name  string
		value int64
	}{
		{"i32_1", 1}, {"i32_2", 2},
		{"ui32_1", 1}, {"ui32_2", 2},
	}
	for _, g := range pairs {
		if _, err := e.DefineGlobal(g.name, intConst(g.value)); err != nil {
			return err
		}
	}
	floatType := e.Types.Float(typecat.Single)
	if _, err := e.DefineGlobal("f_1", constant.NewFloat(floatType, 1.0)); err != nil {
		return err
	}
	if _, err := e.DefineGlobal("f_2", constant.NewFloat(floatType, 2.0)); err != nil {
		return err
	}

	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		signed1, err := e.LoadGlobal("i32_1")
		if err != nil {
			return nil, err
		}
		signed2, err := e.LoadGlobal("i32_2")
		if err != nil {
			return nil, err
		}
		signedPreds := []enum.IPred{
			enum.IPredSGT, enum.IPredSGE, enum.IPredSLT,
			enum.IPredSLE, enum.IPredEQ, enum.IPredNE,
		}
		for _, pred := range signedPreds {
			if _, err := e.ICmp(pred, signed1, signed2); err != nil {
				return nil, err
			}
		}

		unsigned1, err := e.LoadGlobal("ui32_1")
		if err != nil {
			return nil, err
		}
		unsigned2, err := e.LoadGlobal("ui32_2")
		if err != nil {
			return nil, err
		}
		unsignedPreds := []enum.IPred{
			enum.IPredUGT, enum.IPredUGE, enum.IPredULT,
			enum.IPredULE, enum.IPredEQ, enum.IPredNE,
		}
		for _, pred := range unsignedPreds {
			if _, err := e.ICmp(pred, unsigned1, unsigned2); err != nil {
				return nil, err
			}
		}

		float1, err := e.LoadGlobal("f_1")
		if err != nil {
			return nil, err
		}
		float2, err := e.LoadGlobal("f_2")
		if err != nil {
			return nil, err
		}
		floatPreds := []enum.FPred{
			enum.FPredOGT, enum.FPredOGE, enum.FPredOLT,
			enum.FPredOLE, enum.FPredOEQ, enum.FPredUNE,
		}
		for _, pred := range floatPreds {
			if _, err := e.FCmp(pred, float1, float2); err != nil {
				return nil, err
			}
		}
		return signed1, nil
	})
}
