// Package matcher reconstructs closed trades from one day's order stream.
package matcher

import (
	"sort"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
)

// MatchTrades pairs each SELL with the most recent BUY of the same symbol
// that happened strictly before it, and books the realized P&L on the sell.
//
// This is deliberately not lot accounting: the matched BUY is not depleted,
// so one BUY can back several SELLs, and the SELL's quantity is used without
// reconciling it against the BUY's. It approximates realized P&L for display
// the same way the trading log always has. A SELL with no prior BUY for its
// symbol yields no trade.
//
// The function is pure; output is sorted by exit time.
func MatchTrades(orders []models.Order) []models.Trade {
	bySymbol := make(map[string][]models.Order)
	for _, o := range orders {
		if o.Symbol == "" {
			continue
		}
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}

	var trades []models.Trade
	for symbol, symbolOrders := range bySymbol {
		sort.SliceStable(symbolOrders, func(i, j int) bool {
			return symbolOrders[i].Timestamp.Before(symbolOrders[j].Timestamp)
		})

		var buys, sells []models.Order
		for _, o := range symbolOrders {
			switch o.Side {
			case models.SideBuy:
				buys = append(buys, o)
			case models.SideSell:
				sells = append(sells, o)
			}
		}

		for _, sell := range sells {
			entry, ok := latestBuyBefore(buys, sell)
			if !ok {
				continue
			}
			trades = append(trades, makeTrade(symbol, entry, sell))
		}
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitTime.Before(trades[j].ExitTime)
	})
	return trades
}

// latestBuyBefore returns the BUY with the latest timestamp strictly earlier
// than the sell. buys is already sorted ascending.
func latestBuyBefore(buys []models.Order, sell models.Order) (models.Order, bool) {
	for i := len(buys) - 1; i >= 0; i-- {
		if buys[i].Timestamp.Before(sell.Timestamp) {
			return buys[i], true
		}
	}
	return models.Order{}, false
}

func makeTrade(symbol string, entry, exit models.Order) models.Trade {
	diff := exit.Price.Sub(entry.Price)

	pct := 0.0
	if !entry.Price.IsZero() {
		pct, _ = diff.Div(entry.Price).Mul(decimal.NewFromInt(100)).Float64()
	}

	return models.Trade{
		Symbol:        symbol,
		Quantity:      exit.Quantity,
		EntryPrice:    entry.Price,
		ExitPrice:     exit.Price,
		ProfitLoss:    diff.Mul(decimal.NewFromInt(exit.Quantity)),
		ProfitLossPct: pct,
		EntryTime:     entry.Timestamp,
		ExitTime:      exit.Timestamp,
	}
}
