package textextract

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "textextract: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return stdout.String(), nil
}

// extractPDF stages the upload in a temp file for the CLI backend.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "brief-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "textextract: create temp file")
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", eris.Wrap(err, "textextract: write temp file")
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrap(err, "textextract: close temp file")
	}

	return e.pdf.ExtractText(ctx, f.Name())
}
