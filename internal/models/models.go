package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Position is one row of the portfolio sheet snapshot.
// Positions are refreshed wholesale on every load cycle; they are never
// mutated in memory.
type Position struct {
	Symbol         string          `json:"symbol"`
	Quantity       int64           `json:"quantity"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	WeightFraction float64         `json:"weight_fraction"` // fraction of invested capital, 0..1
}

// Order is one executed (or attempted) order from a date-suffixed order sheet.
// ResultText is the broker's free-form result string; for SELL rows it may
// embed a realized-P&L token ("rpnl=<number>").
type Order struct {
	Timestamp  time.Time       `json:"timestamp"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ResultText string          `json:"result_text,omitempty"`
}

// Signal is a strategy signal row. Display only.
type Signal struct {
	Timestamp  time.Time          `json:"timestamp"`
	Symbol     string             `json:"symbol"`
	Action     string             `json:"action"`
	Price      decimal.Decimal    `json:"price"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// HistoryDay is one row of the daily history sheet, keyed by calendar date.
type HistoryDay struct {
	Date          time.Time       `json:"date"`
	Capital       decimal.Decimal `json:"capital"`
	Invested      decimal.Decimal `json:"invested"`
	Cash          decimal.Decimal `json:"cash"`
	RealizedPnl   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	TotalPnl      decimal.Decimal `json:"total_pnl"`
	OpenPositions int             `json:"open_positions"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
}

// Trade is a closed round trip reconstructed by the matcher. Derived only,
// never written back to the sheet.
type Trade struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	ExitPrice     decimal.Decimal `json:"exit_price"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	ProfitLossPct float64         `json:"profit_loss_pct"`
	EntryTime     time.Time       `json:"entry_time"`
	ExitTime      time.Time       `json:"exit_time"`
}

// Summary holds the fixed-location summary cells of the portfolio sheet.
type Summary struct {
	Capital          decimal.Decimal `json:"capital"`
	Invested         decimal.Decimal `json:"invested"`
	Cash             decimal.Decimal `json:"cash"`
	RealizedPnlToday decimal.Decimal `json:"realized_pnl_today"`
	UnrealizedPnl    decimal.Decimal `json:"unrealized_pnl"`
	Tickers          int             `json:"tickers"`
}

// Stats aggregates history and today's orders into dashboard metrics.
// Every field defaults to zero when its source data is empty.
type Stats struct {
	CumulativeRealizedPnl decimal.Decimal `json:"cumulative_realized_pnl"`
	TradingDays           int             `json:"trading_days"`
	AvgDailyPnl           decimal.Decimal `json:"avg_daily_pnl"`
	CumulativeReturnPct   float64         `json:"cumulative_return_pct"`

	CumulativeWinRate float64 `json:"cumulative_win_rate"`
	WinsCumulative    int     `json:"wins_cumulative"`
	LossesCumulative  int     `json:"losses_cumulative"`

	TotalTrades int             `json:"total_trades"`
	BuyCount    int             `json:"buy_count"`
	SellCount   int             `json:"sell_count"`
	BuyAmount   decimal.Decimal `json:"buy_amount"`
	SellAmount  decimal.Decimal `json:"sell_amount"`

	TodayWinRate float64 `json:"today_win_rate"`
	WinsToday    int     `json:"wins_today"`
	LossesToday  int     `json:"losses_today"`
}

// Severity classifies a risk alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// Alert is a single risk finding.
type Alert struct {
	Severity Severity `json:"severity"`
	Symbol   string   `json:"symbol,omitempty"`
	Message  string   `json:"message"`
}

// MarketStatus is derived from the local clock against fixed session hours.
type MarketStatus string

const (
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketOpen    MarketStatus = "OPEN"
	MarketClosed  MarketStatus = "CLOSED"
	MarketWeekend MarketStatus = "WEEKEND"
)
