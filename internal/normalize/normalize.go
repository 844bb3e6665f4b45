// Package normalize converts raw sheet rows into canonical typed records.
//
// The sheet schema drifted over time (ticker vs symbol, qty vs quantity, ...),
// so every domain consults an explicit alias table once at entry instead of
// renaming columns ad hoc. Parsing is best-effort by contract: garbled numeric
// cells fall back to zero, and rows missing their identifying key (symbol, or
// date for history) are dropped rather than failing the load.
package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
	"trading_dashboard/internal/sheets"
)

// Column aliases, oldest scheme last. Matching is case-insensitive.
var (
	symbolAliases   = []string{"symbol", "ticker"}
	quantityAliases = []string{"quantity", "qty"}
	priceAliases    = []string{"price"}
	entryAliases    = []string{"entry_price", "avg_price", "avg"}
	costAliases     = []string{"cost_basis", "cost"}
	weightAliases   = []string{"weight_fraction", "weight%", "weight"}
	sideAliases     = []string{"side"}
	tsAliases       = []string{"ts", "timestamp", "time"}
	resultAliases   = []string{"result", "result_text"}
	actionAliases   = []string{"action", "signal"}
	dateAliases     = []string{"date", "day"}
)

// field returns the first aliased column present in the record.
func field(rec map[string]string, aliases []string) string {
	for _, a := range aliases {
		for k, v := range rec {
			if strings.EqualFold(strings.TrimSpace(k), a) {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// parseDecimal parses a numeric cell, stripping thousands separators.
// Garbled or empty cells yield zero.
func parseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	// Quantities occasionally arrive as "10.0"; go through float like the
	// sheet exporter does.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"15:04:05",
}

// parseTimestamp parses an order/signal timestamp. Time-only values are
// anchored to day (the sheet's trading date). Unparseable values yield the
// zero time; the row is still kept since the timestamp is not its key.
func parseTimestamp(s string, day time.Time, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "15:04:05" {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, loc)
		}
		return t
	}
	return time.Time{}
}

var historyDateLayouts = []string{"20060102", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range historyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Positions normalizes the portfolio table (header row first).
func Positions(rows [][]string) []models.Position {
	records := sheets.RecordsFromRows(rows)
	positions := make([]models.Position, 0, len(records))
	for _, rec := range records {
		symbol := field(rec, symbolAliases)
		if symbol == "" {
			continue
		}
		positions = append(positions, models.Position{
			Symbol:         symbol,
			Quantity:       parseInt(field(rec, quantityAliases)),
			EntryPrice:     parseDecimal(field(rec, entryAliases)),
			CostBasis:      parseDecimal(field(rec, costAliases)),
			WeightFraction: parseFloat(field(rec, weightAliases)),
		})
	}
	return positions
}

// Summary keys for the fixed-location cells of the portfolio sheet.
var (
	capitalKeys  = []string{"CAPITAL"}
	investedKeys = []string{"INVESTED_COST", "INVESTED"}
	cashKeys     = []string{"CASH"}
	rpnlKeys     = []string{"REALIZED_PNL_TODAY", "REALIZED_PNL"}
	upnlKeys     = []string{"UNREALIZED_PNL"}
	tickersKeys  = []string{"TICKERS"}
)

// Summary normalizes the key/value summary block of the portfolio sheet.
func Summary(rows [][]string) models.Summary {
	kv := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		kv[strings.ToUpper(strings.TrimSpace(row[0]))] = row[1]
	}
	pick := func(keys []string) string {
		for _, k := range keys {
			if v, ok := kv[k]; ok {
				return v
			}
		}
		return ""
	}
	return models.Summary{
		Capital:          parseDecimal(pick(capitalKeys)),
		Invested:         parseDecimal(pick(investedKeys)),
		Cash:             parseDecimal(pick(cashKeys)),
		RealizedPnlToday: parseDecimal(pick(rpnlKeys)),
		UnrealizedPnl:    parseDecimal(pick(upnlKeys)),
		Tickers:          int(parseInt(pick(tickersKeys))),
	}
}

// Orders normalizes one day's order records. day anchors time-only
// timestamps to the sheet's trading date.
func Orders(records []map[string]string, day time.Time, loc *time.Location) []models.Order {
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		symbol := field(rec, symbolAliases)
		if symbol == "" {
			continue
		}
		orders = append(orders, models.Order{
			Timestamp:  parseTimestamp(field(rec, tsAliases), day, loc),
			Symbol:     symbol,
			Side:       models.Side(strings.ToUpper(field(rec, sideAliases))),
			Quantity:   parseInt(field(rec, quantityAliases)),
			Price:      parseDecimal(field(rec, priceAliases)),
			ResultText: field(rec, resultAliases),
		})
	}
	return orders
}

// Signals normalizes one day's signal records. Columns that are not part of
// the canonical schema but parse as numbers are kept as indicators.
func Signals(records []map[string]string, day time.Time, loc *time.Location) []models.Signal {
	canonical := map[string]bool{}
	for _, aliases := range [][]string{symbolAliases, tsAliases, actionAliases, priceAliases} {
		for _, a := range aliases {
			canonical[a] = true
		}
	}

	signals := make([]models.Signal, 0, len(records))
	for _, rec := range records {
		symbol := field(rec, symbolAliases)
		if symbol == "" {
			continue
		}
		sig := models.Signal{
			Timestamp: parseTimestamp(field(rec, tsAliases), day, loc),
			Symbol:    symbol,
			Action:    strings.ToUpper(field(rec, actionAliases)),
			Price:     parseDecimal(field(rec, priceAliases)),
		}
		for k, v := range rec {
			key := strings.ToLower(strings.TrimSpace(k))
			if canonical[key] || strings.TrimSpace(v) == "" {
				continue
			}
			if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64); err == nil {
				if sig.Indicators == nil {
					sig.Indicators = make(map[string]float64)
				}
				sig.Indicators[key] = f
			}
		}
		signals = append(signals, sig)
	}
	return signals
}

// HistoryDays normalizes the daily history sheet (header row first) and
// returns rows sorted by date ascending. Rows with an unparseable date are
// dropped; there is one row per calendar date by contract.
func HistoryDays(rows [][]string) []models.HistoryDay {
	records := sheets.RecordsFromRows(rows)
	days := make([]models.HistoryDay, 0, len(records))
	for _, rec := range records {
		date, ok := parseDate(field(rec, dateAliases))
		if !ok {
			continue
		}
		get := func(keys ...string) string { return field(rec, keys) }
		days = append(days, models.HistoryDay{
			Date:          date,
			Capital:       parseDecimal(get("capital")),
			Invested:      parseDecimal(get("invested")),
			Cash:          parseDecimal(get("cash")),
			RealizedPnl:   parseDecimal(get("realized_pnl", "rpnl")),
			UnrealizedPnl: parseDecimal(get("unrealized_pnl", "upnl")),
			TotalPnl:      parseDecimal(get("total_pnl")),
			OpenPositions: int(parseInt(get("positions", "open_positions"))),
			Wins:          int(parseInt(get("wins"))),
			Losses:        int(parseInt(get("losses"))),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
