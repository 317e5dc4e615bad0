// Package pdftext reads text and page counts out of PDF files.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"
)

// Extractor pulls plain text with ledongthuc/pdf and counts pages with
// pdfcpu, falling back to the text reader's page count.
type Extractor struct {
	Logger zerolog.Logger
}

func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

// ExtractText returns the text of every page joined by newlines. Unreadable
// pages contribute empty text, unreadable files return "".
func (e *Extractor) ExtractText(ctx context.Context, path string) string {
	text, err := e.extract(ctx, path)
	if err != nil {
		e.Logger.Debug().Err(err).Str("path", path).Msg("text extraction failed")
		return ""
	}
	return text
}

func (e *Extractor) extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages = append(pages, e.pageText(r, i, fonts, path))
	}
	return strings.Join(pages, "\n"), nil
}

func (e *Extractor) pageText(r *pdf.Reader, i int, fonts map[string]*pdf.Font, path string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.Logger.Debug().Int("page", i).Str("path", path).Msgf("page panic: %v", rec)
			text = ""
		}
	}()

	p := r.Page(i)
	if p.V.IsNull() {
		return ""
	}
	t, err := p.GetPlainText(fonts)
	if err != nil {
		e.Logger.Debug().Err(err).Int("page", i).Str("path", path).Msg("failed to extract page text")
		return ""
	}
	return t
}

// PageCount reports the number of pages, or false when the file cannot be
// parsed by either reader.
func (e *Extractor) PageCount(path string) (int, bool) {
	n, err := pdfcpuPageCount(path)
	if err == nil {
		return n, true
	}
	e.Logger.Debug().Err(err).Str("path", path).Msg("pdfcpu page count failed")

	if n, err = readerPageCount(path); err == nil {
		return n, true
	}
	return 0, false
}

func pdfcpuPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()
	return api.PageCountFile(path)
}

func readerPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
