package analyzer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartextract/internal/domain/entity"
	"smartextract/internal/domain/service"
)

// memFileStore is a map-backed FileStore for tests.
type memFileStore struct {
	objects map[string][]byte
}

func (m *memFileStore) Save(_ context.Context, key, _ string, r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = buf

	return nil
}

func (m *memFileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	buf, ok := m.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}

	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (m *memFileStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)

	return nil
}

func newMemFileStore() *memFileStore {
	return &memFileStore{objects: make(map[string][]byte)}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func fieldByName(fields []service.ExtractedField, name string) (service.ExtractedField, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}

	return service.ExtractedField{}, false
}

func TestImageAnalyzer_DecodesPNG(t *testing.T) {
	t.Parallel()

	files := newMemFileStore()
	files.objects["docs/a.png"] = pngBytes(t, 640, 480)

	doc := &entity.Document{
		ID:          uuid.New(),
		StoragePath: "docs/a.png",
		FileType:    "png",
	}

	fields, err := NewImageAnalyzer(files).Analyze(context.Background(), doc)
	require.NoError(t, err)

	format, ok := fieldByName(fields, "format")
	require.True(t, ok)
	assert.Equal(t, "png", format.Value)
	assert.Empty(t, format.Err)

	width, ok := fieldByName(fields, "width")
	require.True(t, ok)
	assert.Equal(t, "640", width.Value)

	height, ok := fieldByName(fields, "height")
	require.True(t, ok)
	assert.Equal(t, "480", height.Value)
}

func TestImageAnalyzer_UndecodableFormatKeepsFormatField(t *testing.T) {
	t.Parallel()

	files := newMemFileStore()
	files.objects["docs/scan.tiff"] = []byte("II*\x00 not really a tiff")

	doc := &entity.Document{
		ID:          uuid.New(),
		StoragePath: "docs/scan.tiff",
		FileType:    "tiff",
	}

	fields, err := NewImageAnalyzer(files).Analyze(context.Background(), doc)
	require.NoError(t, err)

	format, ok := fieldByName(fields, "format")
	require.True(t, ok)
	assert.Equal(t, "tiff", format.Value)
	assert.Empty(t, format.Err)

	width, ok := fieldByName(fields, "width")
	require.True(t, ok)
	assert.NotEmpty(t, width.Err)

	height, ok := fieldByName(fields, "height")
	require.True(t, ok)
	assert.NotEmpty(t, height.Err)
}

func TestPDFAnalyzer_RejectsGarbage(t *testing.T) {
	t.Parallel()

	files := newMemFileStore()
	files.objects["docs/broken.pdf"] = []byte("%PDF-1.7 truncated")

	doc := &entity.Document{
		ID:          uuid.New(),
		StoragePath: "docs/broken.pdf",
		FileType:    "pdf",
	}

	_, err := NewPDFAnalyzer(files).Analyze(context.Background(), doc)
	assert.Error(t, err)
}

func TestResolver_Dispatch(t *testing.T) {
	t.Parallel()

	r := NewResolver(newMemFileStore())

	cases := []struct {
		fileType string
		found    bool
	}{
		{"png", true},
		{"jpg", true},
		{"jpeg", true},
		{"tiff", true},
		{"bmp", true},
		{"pdf", true},
		{"xyz", false},
		{"docx", false},
	}

	for _, tc := range cases {
		_, ok := r.Resolve(&entity.Document{FileType: tc.fileType})
		assert.Equal(t, tc.found, ok, "file type %s", tc.fileType)
	}
}
