package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/casebrief/pkg/textextract"
)

// DefaultMaxBytes caps uploaded case files.
const DefaultMaxBytes = 32 << 20

var (
	ErrTooLarge    = errors.New("file too large")
	errUnknownType = fmt.Errorf("%w: unknown format", textextract.ErrUnsupportedType)
)

// Document is the text recovered from an uploaded case file.
type Document struct {
	Title string
	Type  string
	Text  string
	Pages int
	OCR   bool
	Size  int64
}

type Service struct {
	extractor TextExtractor
	maxBytes  int64
}

func NewService(ex TextExtractor, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{extractor: ex, maxBytes: maxBytes}
}

// Load reads an upload and extracts its text. name and contentType are
// hints; the body is sniffed when neither identifies the format.
func (s *Service) Load(ctx context.Context, name, contentType string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	fileType := DetectType(name, contentType, data)
	if fileType == "" {
		return nil, fmt.Errorf("detect type of %q: %w", name, errUnknownType)
	}

	result, err := s.extractor.Extract(ctx, data, fileType)
	if err != nil {
		return nil, err
	}

	return &Document{
		Title: titleFromName(name),
		Type:  fileType,
		Text:  strings.TrimSpace(result.Content),
		Pages: result.Pages,
		OCR:   result.Metadata["ocr"] == "true",
		Size:  int64(len(data)),
	}, nil
}

func (s *Service) SupportedTypes() []string {
	return s.extractor.SupportedTypes()
}

func titleFromName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
