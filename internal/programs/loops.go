package programs

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/emit"
)

// buildLoopFor emits the for-form counting loop: a separate increment block
// between body and condition.
//
//	int start = 1, end = 10, result = 0;
//	int main() {
//	  for (int index = start; index <= end; index++)
//	    result = result + index;
//	  return result;
//	}
func buildLoopFor(e *emit.Emitter) error {
	if err := defineCounters(e); err != nil {
		return err
	}
	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		indexAddr, err := initLoopIndex(e)
		if err != nil {
			return nil, err
		}
		err = e.CountingLoop(fn, emit.LoopSpec{
			Cond: loopCondition(indexAddr),
			Body: accumulateIntoResult(indexAddr),
			Post: func(e *emit.Emitter) error {
				next, err := e.Increment(indexAddr, 1)
				if err != nil {
					return err
				}
				return e.Store(indexAddr, next)
			},
		})
		if err != nil {
			return nil, err
		}
		return e.LoadGlobal("result")
	})
}

// buildLoopWhile emits the while-form: the increment folds into the body and
// the body branches straight back to the condition.
//
//	int main() {
//	  int index = start;
//	  while (index <= end) { result = result + index; index = index + 1; }
//	  return result;
//	}
func buildLoopWhile(e *emit.Emitter) error {
	if err := defineCounters(e); err != nil {
		return err
	}
	return defineMain(e, func(e *emit.Emitter, fn *ir.Func, params []value.Value) (value.Value, error) {
		indexAddr, err := initLoopIndex(e)
		if err != nil {
			return nil, err
		}
		err = e.CountingLoop(fn, emit.LoopSpec{
			Cond: loopCondition(indexAddr),
			Body: func(e *emit.Emitter) error {
				if err := accumulateIntoResult(indexAddr)(e); err != nil {
					return err
				}
				next, err := e.Increment(indexAddr, 1)
				if err != nil {
					return err
				}
				return e.Store(indexAddr, next)
			},
		})
		if err != nil {
			return nil, err
		}
		return e.LoadGlobal("result")
	})
}

// initLoopIndex allocates the index cell and seeds it from the start global.
func initLoopIndex(e *emit.Emitter) (value.Value, error) {
	indexAddr, err := e.AllocateStorage(types.I32, "index")
	if err != nil {
		return nil, err
	}
	startValue, err := e.LoadGlobal("start")
	if err != nil {
		return nil, err
	}
	if err := e.Store(indexAddr, startValue); err != nil {
		return nil, err
	}
	return indexAddr, nil
}

// loopCondition evaluates index <= end.
func loopCondition(indexAddr value.Value) func(e *emit.Emitter) (value.Value, error) {
	return func(e *emit.Emitter) (value.Value, error) {
		indexValue, err := e.Load(indexAddr)
		if err != nil {
			return nil, err
		}
		endValue, err := e.LoadGlobal("end")
		if err != nil {
			return nil, err
		}
		return e.ICmp(enum.IPredSLE, indexValue, endValue)
	}
}

// accumulateIntoResult emits result = result + index.
func accumulateIntoResult(indexAddr value.Value) func(e *emit.Emitter) error {
	return func(e *emit.Emitter) error {
		resultValue, err := e.LoadGlobal("result")
		if err != nil {
			return err
		}
		indexValue, err := e.Load(indexAddr)
		if err != nil {
			return err
		}
		sum, err := e.AddNSW(resultValue, indexValue)
		if err != nil {
			return err
		}
		return e.StoreGlobal("result", sum)
	}
}
