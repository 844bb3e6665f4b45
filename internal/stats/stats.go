// Package stats aggregates the history ledger and today's orders into the
// dashboard performance metrics.
package stats

import (
	"strings"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
)

// Compute derives Stats from the (chronologically sorted) history ledger and
// today's orders. Both inputs may be empty; every metric independently
// defaults to zero, and no malformed row ever causes an error; it is simply
// left out of the metric it would have fed.
func Compute(history []models.HistoryDay, orders []models.Order) models.Stats {
	var s models.Stats
	s.CumulativeRealizedPnl = decimal.Zero
	s.AvgDailyPnl = decimal.Zero
	s.BuyAmount = decimal.Zero
	s.SellAmount = decimal.Zero

	if len(history) > 0 {
		for _, d := range history {
			s.CumulativeRealizedPnl = s.CumulativeRealizedPnl.Add(d.RealizedPnl)
			s.WinsCumulative += d.Wins
			s.LossesCumulative += d.Losses
		}
		s.TradingDays = len(history)
		s.AvgDailyPnl = s.CumulativeRealizedPnl.Div(decimal.NewFromInt(int64(s.TradingDays)))

		firstCapital := history[0].Capital
		if firstCapital.IsPositive() {
			s.CumulativeReturnPct, _ = s.CumulativeRealizedPnl.
				Div(firstCapital).Mul(decimal.NewFromInt(100)).Float64()
		}

		if total := s.WinsCumulative + s.LossesCumulative; total > 0 {
			s.CumulativeWinRate = float64(s.WinsCumulative) / float64(total) * 100
		}
	}

	s.TotalTrades = len(orders)
	for _, o := range orders {
		amount := o.Price.Mul(decimal.NewFromInt(o.Quantity))
		switch o.Side {
		case models.SideBuy:
			s.BuyCount++
			s.BuyAmount = s.BuyAmount.Add(amount)
		case models.SideSell:
			s.SellCount++
			s.SellAmount = s.SellAmount.Add(amount)

			rpnl, ok := ParseRealizedPnl(o.ResultText)
			if !ok {
				// No parseable token: excluded from the win/loss
				// denominator entirely, not counted as a loss.
				continue
			}
			if rpnl.IsPositive() {
				s.WinsToday++
			} else {
				s.LossesToday++
			}
		}
	}
	if total := s.WinsToday + s.LossesToday; total > 0 {
		s.TodayWinRate = float64(s.WinsToday) / float64(total) * 100
	}

	return s
}

// ParseRealizedPnl extracts the realized P&L embedded in an order result
// string as "rpnl=<number>". The value is the first whitespace-delimited
// token after the marker, with thousands separators stripped
// ("SELL executed rpnl=-5,000 won" → -5000).
func ParseRealizedPnl(resultText string) (decimal.Decimal, bool) {
	_, after, found := strings.Cut(resultText, "rpnl=")
	if !found {
		return decimal.Zero, false
	}
	token := strings.Fields(after)
	if len(token) == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(token[0], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CurvePoint is one step of the cumulative realized P&L curve.
type CurvePoint struct {
	Date       string          `json:"date"`
	Daily      decimal.Decimal `json:"daily"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// CumulativeCurve folds the history into a running realized-P&L sum, one
// point per trading day, for the performance chart.
func CumulativeCurve(history []models.HistoryDay) []CurvePoint {
	points := make([]CurvePoint, 0, len(history))
	running := decimal.Zero
	for _, d := range history {
		running = running.Add(d.RealizedPnl)
		points = append(points, CurvePoint{
			Date:       d.Date.Format("2006-01-02"),
			Daily:      d.RealizedPnl,
			Cumulative: running,
		})
	}
	return points
}
