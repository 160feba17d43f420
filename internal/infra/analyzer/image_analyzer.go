package analyzer

import (
	"bytes"
	"context"
	"image"
	"io"
	"strconv"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"

	"smartextract/internal/domain/entity"
	"smartextract/internal/domain/service"
)

// imageAnalyzer extracts format and geometry from raster images.
type imageAnalyzer struct {
	files service.FileStore
}

// NewImageAnalyzer is the constructor for imageAnalyzer.
func NewImageAnalyzer(files service.FileStore) service.DocumentAnalyzer {
	return &imageAnalyzer{files: files}
}

// Analyze reports the image format plus its dimensions. Formats without a
// registered decoder (tiff, bmp) still yield the format field; the dimension
// fields carry a per-field error so the job can finish PARTIAL instead of
// failing outright.
func (a *imageAnalyzer) Analyze(ctx context.Context, doc *entity.Document) ([]service.ExtractedField, error) {
	rc, err := a.files.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stored image")
	}
	defer func() { _ = rc.Close() }()

	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stored image")
	}

	fields := []service.ExtractedField{
		{Name: "format", Type: "string", Value: strings.ToLower(doc.FileType), Confidence: 1.0},
	}

	cfgImg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		decodeErr := "could not decode image dimensions: " + err.Error()
		fields = append(fields,
			service.ExtractedField{Name: "width", Type: "number", Err: decodeErr},
			service.ExtractedField{Name: "height", Type: "number", Err: decodeErr},
		)

		return fields, nil
	}

	// Prefer the sniffed format over the file extension when they disagree.
	fields[0].Value = format

	fields = append(fields,
		service.ExtractedField{Name: "width", Type: "number", Value: strconv.Itoa(cfgImg.Width), Confidence: 1.0},
		service.ExtractedField{Name: "height", Type: "number", Value: strconv.Itoa(cfgImg.Height), Confidence: 1.0},
	)

	return fields, nil
}
