package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for formats that need OCR or are unknown.
var ErrUnsupportedType = errors.New("unsupported file type")

const (
	TypePDF   = "pdf"
	TypeDOCX  = "docx"
	TypeTXT   = "txt"
	TypeImage = "image"
)

type ExtractedText struct {
	Content  string
	Pages    int
	Metadata map[string]string
}

// NormalizeType resolves a file type from a file name, a MIME type, or a
// sniffed content type. It returns "" when nothing matches.
func NormalizeType(nameOrType string) string {
	t := strings.ToLower(strings.TrimSpace(nameOrType))
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if ext := filepath.Ext(t); ext != "" && !strings.Contains(t, "/") {
		t = ext
	}
	switch t {
	case ".pdf", "pdf", "application/pdf":
		return TypePDF
	case ".docx", "docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return TypeDOCX
	case ".txt", "txt", "text/plain":
		return TypeTXT
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", "image/png", "image/jpeg", "image/tiff":
		return TypeImage
	default:
		return ""
	}
}

func Extract(data io.ReaderAt, size int64, fileType string) (*ExtractedText, error) {
	switch NormalizeType(fileType) {
	case TypePDF:
		return extractPDF(data, size)
	case TypeDOCX:
		return extractDOCX(data, size)
	case TypeTXT:
		return extractTXT(data, size)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
}

func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".txt"}
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   numPages,
		Metadata: map[string]string{
			"type": TypePDF,
		},
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" && filepath.Base(f.Name) != "document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		text, err := docxParagraphs(rc)
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}
		return &ExtractedText{
			Content: text,
			Pages:   1,
			Metadata: map[string]string{
				"type": TypeDOCX,
			},
		}, nil
	}

	return nil, fmt.Errorf("open DOCX: word/document.xml not found")
}

// docxParagraphs collects w:t runs and emits one line per w:p so paragraph
// boundaries survive extraction.
func docxParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	var para strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte(' ')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(para.String()); line != "" {
					out.WriteString(line)
					out.WriteByte('\n')
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(el)
			}
		}
	}
	if line := strings.TrimSpace(para.String()); line != "" {
		out.WriteString(line)
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

func extractTXT(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	return &ExtractedText{
		Content: string(bytes.TrimSpace(buf)),
		Pages:   1,
		Metadata: map[string]string{
			"type": TypeTXT,
		},
	}, nil
}
