// Package textextract turns uploaded brief documents into plain text for the
// extraction pipeline. Plain text and markdown pass through, spreadsheets go
// through tealeg/xlsx, and PDFs go through the pdftotext CLI.
package textextract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnsupportedFormat is returned for file types the pipeline cannot read.
	ErrUnsupportedFormat = eris.New("textextract: unsupported file format")
	// ErrEmptyContent is returned when a document yields no usable text.
	ErrEmptyContent = eris.New("textextract: document contains no text")
)

// PDFExtractor extracts text content from PDF files.
type PDFExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// Extractor converts uploaded documents to plain text by file extension.
type Extractor struct {
	pdf PDFExtractor
}

// New creates an Extractor. pdfBinPath overrides the pdftotext binary
// location; empty means whatever is on PATH.
func New(pdfBinPath string) *Extractor {
	return &Extractor{pdf: NewPdfToText(pdfBinPath)}
}

// NewWithPDF creates an Extractor with a custom PDF backend.
func NewWithPDF(pdf PDFExtractor) *Extractor {
	return &Extractor{pdf: pdf}
}

// Extract returns the text content of the named document. The format is
// chosen from the file extension.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	switch ext {
	case ".txt", ".md", ".markdown":
		text = string(data)
	case ".xlsx":
		text, err = extractXLSX(data)
	case ".pdf":
		text, err = e.extractPDF(ctx, data)
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

// Supported reports whether the file extension can be extracted.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".xlsx", ".pdf":
		return true
	default:
		return false
	}
}
