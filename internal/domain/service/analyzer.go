package service

import (
	"context"

	"smartextract/internal/domain/entity"
)

// ExtractedField is one field produced by a document analyzer. A non-empty
// Err marks a per-field failure; the job controller decides whether the job
// ends COMPLETED, PARTIAL or FAILED.
type ExtractedField struct {
	Name       string
	Type       string
	Value      string
	Confidence float64
	Err        string
}

// DocumentAnalyzer turns a stored file into field/value/confidence triples.
// Implementations are pluggable; the job controller only dispatches on the
// document's file-type class.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc *entity.Document) ([]ExtractedField, error)
}

// AnalyzerResolver selects an analyzer for a document, or reports that the
// file type is unsupported.
type AnalyzerResolver interface {
	Resolve(doc *entity.Document) (DocumentAnalyzer, bool)
}
