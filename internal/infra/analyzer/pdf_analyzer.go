// Package analyzer implements the document analyzers the extraction worker
// dispatches to, one per file-type class.
package analyzer

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"

	"smartextract/internal/domain/entity"
	"smartextract/internal/domain/service"
)

// pdfAnalyzer extracts structural metadata from PDF files via pdfcpu.
type pdfAnalyzer struct {
	files service.FileStore
}

// NewPDFAnalyzer is the constructor for pdfAnalyzer.
func NewPDFAnalyzer(files service.FileStore) service.DocumentAnalyzer {
	return &pdfAnalyzer{files: files}
}

// Analyze validates the PDF and reports page count, version and the
// information-dictionary fields that are present.
func (a *pdfAnalyzer) Analyze(ctx context.Context, doc *entity.Document) ([]service.ExtractedField, error) {
	rc, err := a.files.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stored pdf")
	}
	defer func() { _ = rc.Close() }()

	// pdfcpu needs a seeker, so buffer the object.
	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stored pdf")
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(buf), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pdf")
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, errors.Wrap(err, "pdf failed validation")
	}

	fields := []service.ExtractedField{
		{Name: "page_count", Type: "number", Value: strconv.Itoa(pdfCtx.PageCount), Confidence: 1.0},
	}

	if pdfCtx.HeaderVersion != nil {
		fields = append(fields, service.ExtractedField{
			Name: "pdf_version", Type: "string", Value: pdfCtx.HeaderVersion.String(), Confidence: 1.0,
		})
	}

	// Info-dictionary entries are optional; absent ones are simply omitted.
	for _, meta := range []struct {
		name  string
		value string
	}{
		{"title", pdfCtx.Title},
		{"author", pdfCtx.Author},
		{"subject", pdfCtx.Subject},
		{"creator", pdfCtx.Creator},
		{"producer", pdfCtx.Producer},
	} {
		if meta.value == "" {
			continue
		}
		fields = append(fields, service.ExtractedField{
			Name: meta.name, Type: "string", Value: meta.value, Confidence: 0.9,
		})
	}

	return fields, nil
}
