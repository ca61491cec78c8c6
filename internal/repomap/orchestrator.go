package repomap

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"repomap/internal/logging"
)

// OrchestratorConfig mirrors the perf section of the Configuration record.
type OrchestratorConfig struct {
	MaxWorkers        int
	ParallelThreshold int
	EnableProgress    bool
	AllowFallback     bool
}

// Orchestrator is C4: it fans C2 out across a worker pool, consulting and
// refilling C3, and aggregates the result.
type Orchestrator struct {
	cfg       OrchestratorConfig
	extractor *tagExtractor
	cache     *TagCache
	root      string
	log       *logging.Logger
}

func NewOrchestrator(cfg OrchestratorConfig, extractor *tagExtractor, cache *TagCache, root string, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NewLoggerWithName("orchestrator")
	}
	return &Orchestrator{cfg: cfg, extractor: extractor, cache: cache, root: root, log: log}
}

// Run extracts tags for every file in paths. The cancellation signal is
// polled between files: a run cancelled mid-way returns no partial
// FileTags for files still in flight, and leaves C3 in a consistent
// state (writes already committed remain valid).
func (o *Orchestrator) Run(ctx context.Context, paths []string, progress ProgressSink) (map[string]FileTags, error) {
	if len(paths) < o.cfg.ParallelThreshold {
		return o.runSequential(ctx, paths, progress)
	}

	result, err := o.runParallel(ctx, paths, progress)
	if err != nil {
		if o.cfg.AllowFallback {
			o.log.Warn("parallel extraction failed, falling back to sequential: %v", err)
			return o.runSequential(ctx, paths, progress)
		}
		return nil, NewParallelError("worker pool failed", err)
	}
	return result, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, paths []string, progress ProgressSink) (map[string]FileTags, error) {
	out := make(map[string]FileTags, len(paths))
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return out, nil
		default:
		}
		out[path] = o.extractOne(ctx, path)
		o.report(progress, i+1, len(paths), path)
	}
	return out, nil
}

func (o *Orchestrator) runParallel(ctx context.Context, paths []string, progress ProgressSink) (map[string]FileTags, error) {
	workers := o.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > 16 {
		workers = 16
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		out  = make(map[string]FileTags, len(paths))
		done int
	)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			ft := o.extractOne(gctx, path)

			mu.Lock()
			out[path] = ft
			done++
			o.report(progress, done, len(paths), path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) extractOne(ctx context.Context, path string) FileTags {
	path = normalizePath(o.root, path)
	full := filepath.Join(o.root, path)
	info, err := os.Stat(full)
	if err != nil {
		return FileTags{Path: path, Diagnostics: []string{"stat failed: " + err.Error()}}
	}
	mtime := info.ModTime().Unix()
	size := info.Size()

	if o.cache != nil {
		if cached, ok := o.cache.Get(path, mtime, size); ok {
			return cached
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return FileTags{Path: path, Diagnostics: []string{"read failed: " + err.Error()}}
	}

	language, ok := languageForExt(filepath.Ext(path))
	if !ok {
		return FileTags{Path: path, MTime: mtime, Size: size, Diagnostics: []string{"unsupported extension"}}
	}

	// Cancelling the run does not abort an extraction already in flight: it
	// completes, so no cut-short FileTags is emitted or written to C3.
	extractCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), extractTimeout)
	defer cancel()

	ft := o.extractor.Extract(extractCtx, path, content, language)
	ft.MTime = mtime
	ft.Size = size

	if o.cache != nil {
		o.cache.Put(ft)
	}
	return ft
}

func (o *Orchestrator) report(sink ProgressSink, done, total int, lastPath string) {
	if sink == nil || !o.cfg.EnableProgress {
		return
	}
	sink(ProgressEvent{FilesDone: done, FilesTotal: total, LastCompletedPath: lastPath})
}
