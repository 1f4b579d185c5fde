package textextract

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// extractXLSX flattens every sheet into tab-separated lines. Briefs arrive
// as spreadsheets often enough (deliverable grids, rate cards) that this is
// worth handling natively.
func extractXLSX(data []byte) (string, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return "", eris.Wrap(err, "textextract: open xlsx")
	}

	var sb strings.Builder
	for _, sheet := range wb.Sheets {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(sheet.Name)
		sb.WriteString("\n")
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			empty := true
			for _, cell := range row.Cells {
				v := strings.TrimSpace(cell.String())
				if v != "" {
					empty = false
				}
				cells = append(cells, v)
			}
			if empty {
				continue
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
