package sheets

import (
	"context"
	"sort"
	"strings"
)

// Store is the read-only spreadsheet collaborator the dashboard loads from.
// Interfaces define behavior: the refresher only cares that it can read rows,
// so tests swap in a fake store and the Google client stays at the edge.
type Store interface {
	// GetRows returns the cell values for a range of a sheet as strings.
	// An empty rng reads the whole sheet.
	GetRows(ctx context.Context, sheetName, rng string) ([][]string, error)
	// ListSheetNames returns all worksheet titles in the spreadsheet.
	ListSheetNames(ctx context.Context) ([]string, error)
	// GetAllRecords returns a sheet's rows keyed by its header row.
	GetAllRecords(ctx context.Context, sheetName string) ([]map[string]string, error)
	// Invalidate drops any cached client/session state so the next read
	// reconnects. Called on manual refresh.
	Invalidate()
}

// LatestSheetWithPrefix resolves the most recent date-suffixed sheet for a
// prefix (e.g. "Order_" over Order_20260115, Order_20260116, ...). The date
// suffix format is fixed (YYYYMMDD), so descending lexicographic order equals
// reverse chronological order. Returns "" when no sheet matches.
func LatestSheetWithPrefix(names []string, prefix string) string {
	var matched []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			matched = append(matched, n)
		}
	}
	if len(matched) == 0 {
		return ""
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matched)))
	return matched[0]
}
