package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nikhilbhutani/casebrief/pkg/textextract"
)

// minExtractedChars is the length below which a PDF is treated as scanned.
const minExtractedChars = 50

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileType string) (*textextract.ExtractedText, error)
	SupportedTypes() []string
}

type extractor struct {
	ocr *OCRService
}

// NewTextExtractor returns an extractor that falls back to ocr for images
// and scanned PDFs. ocr may be nil.
func NewTextExtractor(ocr *OCRService) TextExtractor {
	return &extractor{ocr: ocr}
}

func (e *extractor) Extract(ctx context.Context, data []byte, fileType string) (*textextract.ExtractedText, error) {
	kind := textextract.NormalizeType(fileType)
	if kind == textextract.TypeImage {
		if !e.ocr.IsAvailable() {
			return nil, fmt.Errorf("extract text: %w: image needs OCR", textextract.ErrUnsupportedType)
		}
		text, err := e.ocr.ExtractImage(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		return &textextract.ExtractedText{
			Content:  text,
			Pages:    1,
			Metadata: map[string]string{"type": textextract.TypeImage, "ocr": "true"},
		}, nil
	}

	result, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), kind)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	if kind == textextract.TypePDF && utf8.RuneCountInString(result.Content) < minExtractedChars && e.ocr.CanRasterize() {
		text, pages, err := e.ocr.ExtractPDF(ctx, data)
		if err != nil {
			slog.Warn("pdf OCR failed, keeping embedded text", "error", err)
			return result, nil
		}
		if len(text) > len(result.Content) {
			result.Content = text
			result.Pages = pages
			result.Metadata["ocr"] = "true"
		}
	}

	return result, nil
}

func (e *extractor) SupportedTypes() []string {
	types := textextract.SupportedTypes()
	if e.ocr.IsAvailable() {
		types = append(types, textextract.TypeImage)
	}
	return types
}

// DetectType resolves the file type from the name, then the declared
// content type, then by sniffing the first bytes.
func DetectType(name, contentType string, data []byte) string {
	if t := textextract.NormalizeType(name); t != "" {
		return t
	}
	if t := textextract.NormalizeType(contentType); t != "" {
		return t
	}
	sniffed := http.DetectContentType(data)
	if t := textextract.NormalizeType(sniffed); t != "" {
		return t
	}
	// DOCX files sniff as zip archives.
	if strings.HasPrefix(sniffed, "application/zip") && bytes.Contains(data, []byte("word/")) {
		return textextract.TypeDOCX
	}
	return ""
}

// IsUnsupported reports whether err means the format cannot be read.
func IsUnsupported(err error) bool {
	return errors.Is(err, textextract.ErrUnsupportedType)
}
