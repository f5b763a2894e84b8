package core

import (
	"sort"

	"github.com/skyfreelabs/skyfree/model"
)

// ReportRow is one flattened line of a result set, ready for export.
// Failed computations become rows too, with Err set and no value.
type ReportRow struct {
	RecordID    string
	Catalog     string
	Kind        model.QuantityKind
	Value       float64
	Uncertainty float64
	Valid       bool
	Regime      string
	Warnings    []string
	Components  map[string]float64
	Err         string
}

// AssembleReport merges one or more result batches into report rows ordered
// deterministically: first by record identifier, then by quantity kind in
// its fixed enum order. Batch-level quantities (no record) sort first. The
// assembler performs no I/O.
func AssembleReport(batches ...[]Result) []ReportRow {
	var rows []ReportRow
	for _, batch := range batches {
		for _, res := range batch {
			rows = append(rows, rowFromResult(res))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RecordID != rows[j].RecordID {
			return rows[i].RecordID < rows[j].RecordID
		}
		return rows[i].Kind < rows[j].Kind
	})
	return rows
}

func rowFromResult(res Result) ReportRow {
	// The requested kind stands in for failed results with no quantity, so
	// failure rows sort and export under what was asked for.
	row := ReportRow{Kind: res.Kind}
	if res.Record != nil {
		row.RecordID = res.Record.ID
		row.Catalog = res.Record.Catalog.String()
	}
	if res.Quantity != nil {
		if row.RecordID == "" {
			row.RecordID = res.Quantity.RecordID
		}
		row.Kind = res.Quantity.Kind
		row.Value = res.Quantity.Value
		row.Uncertainty = res.Quantity.Uncertainty
		row.Valid = res.Quantity.Valid
		row.Regime = res.Quantity.Regime
		row.Warnings = res.Quantity.Warnings
		row.Components = res.Quantity.Components
	}
	if res.Err != nil {
		row.Err = res.Err.Error()
	}
	return row
}
