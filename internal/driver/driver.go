// Package driver orchestrates catalog emission: it builds the requested
// programs in parallel, verifies each module, evaluates the entry result,
// writes output files and keeps a disk cache of finished emissions.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"irforge/internal/emit"
	"irforge/internal/interp"
	"irforge/internal/observ"
	"irforge/internal/programs"
	"irforge/internal/verify"
)

// Options selects what to emit and what to do with the result.
type Options struct {
	// Programs is the set of catalog names to emit; empty means the whole
	// catalog.
	Programs []string

	// Triple overrides the target triple; empty means the host triple.
	Triple string

	// OutDir, when set, receives one <name>.ll file per program.
	OutDir string

	// Check evaluates each program's main() and fails on a result that
	// disagrees with the catalog's expectation.
	Check bool

	// Jobs bounds emission parallelism; <= 0 means GOMAXPROCS.
	Jobs int

	// NoCache bypasses the disk cache entirely.
	NoCache bool

	// Timer, when set, records the pipeline phases.
	Timer *observ.Timer
}

// Result is one program's emission outcome, in catalog order.
type Result struct {
	Name       string
	IR         string
	MainResult int64
	HasResult  bool
	Cached     bool
	OutPath    string
}

// Run emits the selected programs and returns their results in the order the
// selection named them (catalog order for an empty selection).
func Run(ctx context.Context, opts Options) ([]Result, error) {
	selected, err := resolve(opts.Programs)
	if err != nil {
		return nil, err
	}
	triple := opts.Triple
	if triple == "" {
		triple = emit.HostTriple()
	}

	var cache *DiskCache
	if !opts.NoCache {
		cache, err = OpenDiskCache("irforge")
		if err != nil {
			// A broken cache directory degrades to cold emission.
			cache = nil
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var emitPhase int
	if opts.Timer != nil {
		emitPhase = opts.Timer.Begin("emit")
	}

	// Result indexes are unique per goroutine, no mutex needed.
	results := make([]Result, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(selected)))
	for i, prog := range selected {
		i, prog := i, prog
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := emitOne(prog, triple, cache, opts.Check)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.Timer != nil {
		opts.Timer.End(emitPhase, fmt.Sprintf("%d programs", len(selected)))
	}

	if opts.OutDir != "" {
		var writePhase int
		if opts.Timer != nil {
			writePhase = opts.Timer.Begin("write")
		}
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, err
		}
		for i := range results {
			path := filepath.Join(opts.OutDir, results[i].Name+".ll")
			if err := os.WriteFile(path, []byte(results[i].IR), 0o644); err != nil {
				return nil, err
			}
			results[i].OutPath = path
		}
		if opts.Timer != nil {
			opts.Timer.End(writePhase, opts.OutDir)
		}
	}

	return results, nil
}

// resolve maps the selection to catalog entries, defaulting to the whole
// catalog. Unknown names fail before any emission starts.
func resolve(names []string) ([]programs.Program, error) {
	if len(names) == 0 {
		return programs.Registry(), nil
	}
	out := make([]programs.Program, 0, len(names))
	for _, name := range names {
		p, ok := programs.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown program %q (known: %v)", name, programs.Names())
		}
		out = append(out, p)
	}
	return out, nil
}

// emitOne produces one program's module, from cache when possible.
func emitOne(prog programs.Program, triple string, cache *DiskCache, check bool) (Result, error) {
	key := cacheKey(prog.Name, triple)

	var payload DiskPayload
	if hit, err := cache.Get(key, &payload); err == nil && hit && payload.Program == prog.Name && payload.Triple == triple {
		res := Result{
			Name:       prog.Name,
			IR:         payload.IR,
			MainResult: payload.MainResult,
			HasResult:  payload.HasResult,
			Cached:     true,
		}
		if check {
			if err := checkResult(prog, res); err != nil {
				return Result{}, err
			}
		}
		return res, nil
	}

	e, err := prog.Build(triple)
	if err != nil {
		return Result{}, err
	}
	if err := verify.Module(e.Mod); err != nil {
		return Result{}, fmt.Errorf("program %s: %w", prog.Name, err)
	}

	res := Result{Name: prog.Name, IR: e.String()}
	if prog.Expect != nil {
		got, err := interp.Run(e.Mod, "main")
		if err != nil {
			return Result{}, fmt.Errorf("program %s: evaluate main: %w", prog.Name, err)
		}
		res.MainResult = got.Int
		res.HasResult = true
	}
	if check {
		if err := checkResult(prog, res); err != nil {
			return Result{}, err
		}
	}

	// Cache writes are best effort; the emission already succeeded.
	_ = cache.Put(key, &DiskPayload{
		Schema:     diskCacheSchemaVersion,
		Program:    prog.Name,
		Triple:     triple,
		IR:         res.IR,
		MainResult: res.MainResult,
		HasResult:  res.HasResult,
	})
	return res, nil
}

func checkResult(prog programs.Program, res Result) error {
	if prog.Expect == nil {
		return nil
	}
	if !res.HasResult {
		return fmt.Errorf("program %s: no evaluated result to check", prog.Name)
	}
	if res.MainResult != *prog.Expect {
		return fmt.Errorf("program %s: main returned %d, want %d", prog.Name, res.MainResult, *prog.Expect)
	}
	return nil
}
