package document

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/casebrief/pkg/textextract"
)

func docx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	data := docx(t, "x")

	assert.Equal(t, textextract.TypePDF, DetectType("case.pdf", "", nil))
	assert.Equal(t, textextract.TypeTXT, DetectType("upload", "text/plain; charset=utf-8", nil))
	assert.Equal(t, textextract.TypePDF, DetectType("blob", "application/octet-stream", []byte("%PDF-1.7\n")))
	assert.Equal(t, textextract.TypeDOCX, DetectType("blob", "", data))
	assert.Equal(t, textextract.TypeTXT, DetectType("", "", []byte("The court held that")))
	assert.Equal(t, "", DetectType("blob", "", []byte{0x00, 0x01, 0x02, 0xff}))
}

func TestServiceLoadDOCX(t *testing.T) {
	svc := NewService(NewTextExtractor(nil), 0)

	doc, err := svc.Load(context.Background(), "Smith v Jones.docx", "", bytes.NewReader(docx(t, "First para.", "Second para.")))
	require.NoError(t, err)

	assert.Equal(t, "Smith v Jones", doc.Title)
	assert.Equal(t, textextract.TypeDOCX, doc.Type)
	assert.Equal(t, "First para.\nSecond para.", doc.Text)
	assert.False(t, doc.OCR)
}

func TestServiceLoadLimits(t *testing.T) {
	svc := NewService(NewTextExtractor(nil), 8)

	_, err := svc.Load(context.Background(), "a.txt", "", strings.NewReader("0123456789"))
	assert.ErrorIs(t, err, ErrTooLarge)

	doc, err := svc.Load(context.Background(), "a.txt", "", strings.NewReader(" abc \n"))
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.Text)
}

func TestServiceLoadImageWithoutOCR(t *testing.T) {
	svc := NewService(NewTextExtractor(&OCRService{}), 0)

	_, err := svc.Load(context.Background(), "scan.png", "", bytes.NewReader([]byte("\x89PNG")))
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
	assert.NotContains(t, svc.SupportedTypes(), textextract.TypeImage)
}

func TestPageNumber(t *testing.T) {
	assert.Equal(t, 2, pageNumber("/tmp/x/page-02.png"))
	assert.Equal(t, 11, pageNumber("/tmp/x/page-11.png"))
}
