package models

import "time"

// RiskReport is the outcome of one risk evaluation pass.
// Evaluated distinguishes "checked and found nothing" from "nothing to check".
type RiskReport struct {
	Alerts    []Alert `json:"alerts"`
	Evaluated bool    `json:"evaluated"`
}

// AllClear reports whether the evaluation ran and found no violations.
func (r RiskReport) AllClear() bool {
	return r.Evaluated && len(r.Alerts) == 0
}

// Snapshot is the immutable output of one refresh cycle. Render surfaces
// (HTTP API, Telegram dashboard) only ever see whole snapshots; a new cycle
// builds a fresh one from scratch and swaps it in atomically.
//
// LoadErrors records per-domain load failures ("history", "orders", ...).
// The corresponding slices are empty when their domain failed, so consumers
// that don't care about diagnostics can ignore it.
type Snapshot struct {
	LoadedAt     time.Time    `json:"loaded_at"`
	MarketStatus MarketStatus `json:"market_status"`

	Summary     Summary      `json:"summary"`
	Positions   []Position   `json:"positions"`
	HistoryDays []HistoryDay `json:"history_days"`
	Orders      []Order      `json:"orders"`
	Signals     []Signal     `json:"signals"`
	Trades      []Trade      `json:"trades"`
	Stats       Stats        `json:"stats"`
	Risk        RiskReport   `json:"risk"`

	LoadErrors map[string]string `json:"load_errors,omitempty"`
}
