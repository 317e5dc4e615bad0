// Package fingerprint turns PDF files into immutable DocumentRecords: exact
// content hash, page count, normalized text and MinHash signature.
package fingerprint

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/docket/internal/core/model"
)

// TextExtractor is the PDF collaborator. Neither method returns an error:
// unreadable documents yield empty text and an unknown page count.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) string
	PageCount(path string) (int, bool)
}

type Fingerprinter struct {
	Extractor TextExtractor
	Hasher    *MinHasher
	Workers   int
	Logger    zerolog.Logger
}

func NewFingerprinter(extractor TextExtractor, hasher *MinHasher, workers int, logger zerolog.Logger) *Fingerprinter {
	if workers < 1 {
		workers = 1
	}
	return &Fingerprinter{
		Extractor: extractor,
		Hasher:    hasher,
		Workers:   workers,
		Logger:    logger,
	}
}

// Fingerprint builds the record for one file. Failures degrade the affected
// fields and are logged, they never abort the run.
func (f *Fingerprinter) Fingerprint(ctx context.Context, path string) model.DocumentRecord {
	rec := model.DocumentRecord{
		Path: path,
		Name: filepath.Base(path),
	}

	info, err := os.Stat(path)
	if err != nil {
		f.Logger.Warn().Err(err).Str("path", path).Msg("file not readable, skipping hash and text")
		rec.Signature = f.Hasher.Signature("")
		return rec
	}
	rec.Size = info.Size()
	rec.Available = true

	hash, err := HashFile(path)
	if err != nil {
		f.Logger.Warn().Err(err).Str("path", path).Msg("failed to hash file")
	}
	rec.ExactHash = hash

	if n, ok := f.Extractor.PageCount(path); ok {
		rec.Pages = &n
	} else {
		f.Logger.Debug().Str("path", path).Msg("page count unavailable")
	}

	rec.Text = Normalize(f.Extractor.ExtractText(ctx, path))
	rec.Signature = f.Hasher.Signature(rec.Text)
	return rec
}

// FingerprintAll fingerprints paths with at most Workers files in flight.
// The returned records are in the same order as paths.
func (f *Fingerprinter) FingerprintAll(ctx context.Context, paths []string) ([]model.DocumentRecord, error) {
	records := make([]model.DocumentRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = f.Fingerprint(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.Logger.Info().Int("files", len(paths)).Msg("fingerprinted documents")
	return records, nil
}
