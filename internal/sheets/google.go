package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleStore reads a single Google spreadsheet through a service account.
// The underlying API client is process-wide and lazily constructed on first
// use; Invalidate drops it so the next read authenticates from scratch.
type GoogleStore struct {
	credsPath     string
	spreadsheetID string

	mu  sync.Mutex
	svc *sheets.Service
}

// NewGoogleStore creates a store for the given spreadsheet. No network or
// auth happens here; the client is built on first read.
func NewGoogleStore(credsPath, spreadsheetID string) *GoogleStore {
	return &GoogleStore{credsPath: credsPath, spreadsheetID: spreadsheetID}
}

// service returns the cached Sheets client, building it if needed.
func (g *GoogleStore) service(ctx context.Context) (*sheets.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}

	data, err := os.ReadFile(g.credsPath)
	if err != nil {
		return nil, fmt.Errorf("read service account credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}

	g.svc = svc
	return svc, nil
}

// Invalidate drops the cached client. The next read rebuilds it.
func (g *GoogleStore) Invalidate() {
	g.mu.Lock()
	g.svc = nil
	g.mu.Unlock()
}

// GetRows reads a range of a sheet as formatted strings. An empty rng reads
// the whole sheet.
func (g *GoogleStore) GetRows(ctx context.Context, sheetName, rng string) ([][]string, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	readRange := sheetName
	if rng != "" {
		readRange = sheetName + "!" + rng
	}

	resp, err := svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListSheetNames returns all worksheet titles in the spreadsheet.
func (g *GoogleStore) ListSheetNames(ctx context.Context) ([]string, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := svc.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}

	names := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

// GetAllRecords reads a whole sheet and keys each data row by the header row.
// Rows shorter than the header are padded with empty strings; a sheet with
// only a header (or nothing) yields no records.
func (g *GoogleStore) GetAllRecords(ctx context.Context, sheetName string) ([]map[string]string, error) {
	rows, err := g.GetRows(ctx, sheetName, "")
	if err != nil {
		return nil, err
	}
	return RecordsFromRows(rows), nil
}

// RecordsFromRows converts header-plus-data rows into header-keyed records.
func RecordsFromRows(rows [][]string) []map[string]string {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}
