// Package batch runs the per-document pipeline over many files with bounded
// parallelism, consulting the record store so unchanged documents skip the
// completion call.
package batch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/ingest"
	"github.com/taxsahaj/taxsahaj/internal/pipeline"
	"github.com/taxsahaj/taxsahaj/internal/reconcile"
	"github.com/taxsahaj/taxsahaj/internal/repository"
)

const defaultParallelism = 4

type Processor struct {
	Logger      *slog.Logger
	Loader      *ingest.Loader
	Analyzer    *pipeline.Analyzer
	Store       repository.RecordStore // optional cache; nil disables caching
	Parallelism int
}

func NewProcessor(analyzer *pipeline.Analyzer, store repository.RecordStore, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:      logger,
		Loader:      ingest.NewLoader(logger),
		Analyzer:    analyzer,
		Store:       store,
		Parallelism: defaultParallelism,
	}
}

// ProcessDir discovers and processes every ingestible file under root.
func (p *Processor) ProcessDir(ctx context.Context, root string) ([]entity.ReconciledRecord, error) {
	files, err := ingest.Discover(root)
	if err != nil {
		return nil, common.NewAppError("BATCH_DISCOVER", "discover documents", err)
	}
	p.Logger.Info("batch.discover", "root", root, "files", len(files))
	return p.ProcessFiles(ctx, files)
}

// ProcessFiles runs the pipeline over the given paths. Results keep the input
// order. Per-document failures become unusable records rather than aborting
// the batch; only context cancellation stops it.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) ([]entity.ReconciledRecord, error) {
	results := make([]entity.ReconciledRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.Parallelism
	if limit <= 0 {
		limit = defaultParallelism
	}
	g.SetLimit(limit)

	for i, path := range paths {
		p.Logger.Debug("batch.document",
			"path", path,
			"status", string(constants.JobStatusQueued),
		)
		g.Go(func() error {
			rec, err := p.processOne(gctx, path)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.Logger.Info("batch.done", "documents", len(results))
	return results, nil
}

func (p *Processor) processOne(ctx context.Context, path string) (entity.ReconciledRecord, error) {
	p.Logger.Debug("batch.document",
		"path", path,
		"status", string(constants.JobStatusRunning),
	)

	doc, err := p.Loader.Load(path)
	if err != nil {
		p.Logger.Error("batch.load_failed",
			"path", path,
			"status", string(constants.JobStatusFailed),
			"error", err,
		)
		return entity.ReconciledRecord{
			Category:         constants.Unknown,
			ExtractionMethod: reconcile.MethodNone,
			Errors:           []string{err.Error()},
			SourceFile:       path,
		}, nil
	}

	ctx = common.WithDocument(ctx, path)
	p.Logger.Debug("batch.document",
		"path", path,
		"status", string(constants.JobStatusExtracted),
		"text_len", len(doc.Text.Text),
	)

	key := repository.CacheKey(doc.Content, doc.Size, doc.ModTime.Unix())
	if p.Store != nil {
		cached, err := p.Store.Get(ctx, key)
		if err == nil {
			p.Logger.Info("batch.cache_hit", "path", path)
			return cached, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			p.Logger.Warn("batch.cache_error", "path", path, "error", err)
		}
	}

	rec, err := p.Analyzer.Analyze(ctx, doc.Text, path)
	if err != nil {
		return entity.ReconciledRecord{}, err
	}

	if p.Store != nil {
		if err := p.Store.Put(ctx, key, rec); err != nil {
			p.Logger.Warn("batch.cache_put_failed", "path", path, "error", err)
		}
	}

	p.Logger.Debug("batch.document",
		"path", path,
		"status", string(constants.JobStatusReconciled),
		"category", string(rec.Category),
	)
	return rec, nil
}
