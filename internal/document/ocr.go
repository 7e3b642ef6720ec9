package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCRService shells out to tesseract, and to pdftoppm for scanned PDFs.
type OCRService struct {
	tesseractPath string
	pdftoppmPath  string
	language      string
}

func NewOCRService(language string) *OCRService {
	if language == "" {
		language = "eng"
	}
	tess, _ := exec.LookPath("tesseract")
	ppm, _ := exec.LookPath("pdftoppm")
	return &OCRService{tesseractPath: tess, pdftoppmPath: ppm, language: language}
}

func (o *OCRService) IsAvailable() bool {
	return o != nil && o.tesseractPath != ""
}

// CanRasterize reports whether scanned PDFs can be OCR'd.
func (o *OCRService) CanRasterize() bool {
	return o.IsAvailable() && o.pdftoppmPath != ""
}

func (o *OCRService) ExtractText(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, o.tesseractPath, imagePath, "stdout", "-l", o.language)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// ExtractImage OCRs an in-memory image.
func (o *OCRService) ExtractImage(ctx context.Context, data []byte) (string, error) {
	if !o.IsAvailable() {
		return "", fmt.Errorf("tesseract not installed")
	}
	dir, err := os.MkdirTemp("", "casebrief-ocr-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "page")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return o.ExtractText(ctx, path)
}

// ExtractPDF rasterizes every page and OCRs them in order. Pages are
// joined with newlines so paragraph chunking still sees breaks.
func (o *OCRService) ExtractPDF(ctx context.Context, data []byte) (string, int, error) {
	if !o.CanRasterize() {
		return "", 0, fmt.Errorf("pdftoppm or tesseract not installed")
	}
	dir, err := os.MkdirTemp("", "casebrief-ocr-")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return "", 0, fmt.Errorf("write pdf: %w", err)
	}
	cmd := exec.CommandContext(ctx, o.pdftoppmPath, "-r", "300", "-png", src, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return "", 0, err
	}
	sort.Slice(pages, func(i, j int) bool { return pageNumber(pages[i]) < pageNumber(pages[j]) })

	var texts []string
	for _, p := range pages {
		t, err := o.ExtractText(ctx, p)
		if err != nil {
			return "", 0, err
		}
		if t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n"), len(pages), nil
}

// pageNumber parses the numeric suffix pdftoppm writes (page-01.png, page-2.png).
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	n := 0
	for _, r := range base[strings.LastIndex(base, "-")+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
