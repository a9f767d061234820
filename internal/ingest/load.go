package ingest

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/keyword-gap/internal/model"
)

// LoadOptions configures LoadFile and LoadPair.
type LoadOptions struct {
	SheetName           string
	MaxMeasuredPosition int
	MaxWarningsLogged   int
}

// Pair holds the normalized client and competitor datasets of one run.
type Pair struct {
	Client     *model.Dataset
	Competitor *model.Dataset
}

// LoadFile reads, validates, and normalizes one export.
func LoadFile(ctx context.Context, path string, side model.Side, opts LoadOptions) (*model.Dataset, error) {
	log := zap.L().With(zap.String("side", string(side)), zap.String("path", path))

	t, err := ReadTable(ctx, path, ReadOptions{SheetName: opts.SheetName})
	if err != nil {
		return nil, err
	}

	ds, err := Normalize(t, side, NormalizeOptions{MaxMeasuredPosition: opts.MaxMeasuredPosition})
	if err != nil {
		return nil, err
	}

	logWarnings(log, ds.Warnings, opts.MaxWarningsLogged)
	log.Info("ingest: loaded",
		zap.Int("raw_rows", ds.RawRows),
		zap.Int("keywords", len(ds.Records)),
		zap.Int("warnings", len(ds.Warnings)),
	)
	return ds, nil
}

// LoadPair loads the client and competitor exports concurrently. Each side
// is read into its own dataset; the first failure cancels the other.
func LoadPair(ctx context.Context, clientPath, competitorPath string, opts LoadOptions) (*Pair, error) {
	var pair Pair
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds, err := LoadFile(gCtx, clientPath, model.SideClient, opts)
		if err != nil {
			return annotate(err, "ingest: client file")
		}
		pair.Client = ds
		return nil
	})
	g.Go(func() error {
		ds, err := LoadFile(gCtx, competitorPath, model.SideCompetitor, opts)
		if err != nil {
			return annotate(err, "ingest: competitor file")
		}
		pair.Competitor = ds
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

// AsSchemaError extracts a SchemaError from err's chain.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// annotate wraps err with msg, except schema errors, which are returned as-is
// so callers can report the missing columns.
func annotate(err error, msg string) error {
	if _, ok := AsSchemaError(err); ok {
		return err
	}
	return eris.Wrap(err, msg)
}

func logWarnings(log *zap.Logger, warnings []model.DataQualityWarning, limit int) {
	if limit <= 0 {
		limit = 20
	}
	for i, w := range warnings {
		if i >= limit {
			log.Warn("ingest: further data quality warnings suppressed",
				zap.Int("suppressed", len(warnings)-limit))
			return
		}
		log.Warn("ingest: data quality",
			zap.Int("row", w.Row),
			zap.String("column", w.Column),
			zap.String("value", w.Value),
			zap.String("reason", w.Reason),
		)
	}
}
