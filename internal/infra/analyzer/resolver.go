package analyzer

import (
	"smartextract/internal/domain/entity"
	"smartextract/internal/domain/service"
)

// resolver dispatches a document to the analyzer for its file-type class.
type resolver struct {
	image service.DocumentAnalyzer
	pdf   service.DocumentAnalyzer
}

// NewResolver is the constructor for the analyzer resolver.
func NewResolver(files service.FileStore) service.AnalyzerResolver {
	return &resolver{
		image: NewImageAnalyzer(files),
		pdf:   NewPDFAnalyzer(files),
	}
}

// Resolve returns the analyzer for the document, or false when the file type
// has no analyzer.
func (r *resolver) Resolve(doc *entity.Document) (service.DocumentAnalyzer, bool) {
	switch doc.Class() {
	case entity.FileTypeImage:
		return r.image, true
	case entity.FileTypePDF:
		return r.pdf, true
	default:
		return nil, false
	}
}
