// Package export writes assembled report rows to CSV. The assembler already
// fixed the row order, so the writer is a straight serialisation pass.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/skyfreelabs/skyfree/core"
)

var header = []string{
	"record_id", "catalog", "quantity", "value", "uncertainty",
	"valid", "regime", "warnings", "components", "error",
}

// WriteCSV serialises report rows, one line per row, preceded by a header.
// Component maps are flattened to "key=value" pairs in key order so output
// is byte-stable for identical input.
func WriteCSV(w io.Writer, rows []core.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.RecordID,
			row.Catalog,
			row.Kind.String(),
			formatFloat(row.Value),
			formatFloat(row.Uncertainty),
			strconv.FormatBool(row.Valid),
			row.Regime,
			strings.Join(row.Warnings, "; "),
			formatComponents(row.Components),
			row.Err,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.RecordID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatComponents(components map[string]float64) string {
	if len(components) == 0 {
		return ""
	}
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatFloat(components[k]))
	}
	return strings.Join(parts, "; ")
}
