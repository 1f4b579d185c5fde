package textextract

import (
	"bytes"
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

type fakePDF struct {
	text string
	err  error
}

func (f *fakePDF) ExtractText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func TestExtract_PlainTextPassthrough(t *testing.T) {
	e := NewWithPDF(&fakePDF{})

	got, err := e.Extract(context.Background(), "brief.txt", []byte("  Post 2 reels for GlowCo  \n"))
	require.NoError(t, err)
	assert.Equal(t, "Post 2 reels for GlowCo", got)

	got, err = e.Extract(context.Background(), "BRIEF.MD", []byte("# Campaign\nDetails"))
	require.NoError(t, err)
	assert.Equal(t, "# Campaign\nDetails", got)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := NewWithPDF(&fakePDF{})

	_, err := e.Extract(context.Background(), "brief.docx", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_EmptyContent(t *testing.T) {
	e := NewWithPDF(&fakePDF{})

	_, err := e.Extract(context.Background(), "brief.txt", []byte("   \n\t "))
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestExtract_XLSX(t *testing.T) {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Deliverables")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().SetString("Type")
	header.AddCell().SetString("Quantity")
	row := sheet.AddRow()
	row.AddCell().SetString("instagram_reel")
	row.AddCell().SetString("2")
	sheet.AddRow() // blank rows are skipped

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	e := NewWithPDF(&fakePDF{})
	got, err := e.Extract(context.Background(), "rates.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, got, "Deliverables")
	assert.Contains(t, got, "Type\tQuantity")
	assert.Contains(t, got, "instagram_reel\t2")
}

func TestExtract_XLSXGarbage(t *testing.T) {
	e := NewWithPDF(&fakePDF{})

	_, err := e.Extract(context.Background(), "rates.xlsx", []byte("not a spreadsheet"))
	assert.Error(t, err)
}

func TestExtract_PDFDelegates(t *testing.T) {
	e := NewWithPDF(&fakePDF{text: "Campaign brief from the PDF"})

	got, err := e.Extract(context.Background(), "brief.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "Campaign brief from the PDF", got)

	e = NewWithPDF(&fakePDF{err: eris.New("pdftotext missing")})
	_, err = e.Extract(context.Background(), "brief.pdf", []byte("%PDF-1.7"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("brief.txt"))
	assert.True(t, Supported("brief.md"))
	assert.True(t, Supported("brief.markdown"))
	assert.True(t, Supported("rates.XLSX"))
	assert.True(t, Supported("brief.pdf"))
	assert.False(t, Supported("brief.docx"))
	assert.False(t, Supported("brief"))
}
