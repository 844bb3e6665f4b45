package matcher

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
)

func at(min int) time.Time {
	return time.Date(2026, 1, 16, 9, min, 0, 0, time.UTC)
}

func order(symbol string, side models.Side, qty int64, price float64, ts time.Time) models.Order {
	return models.Order{
		Timestamp: ts,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     decimal.NewFromFloat(price),
	}
}

func TestMatchTrades_SimpleRoundTrip(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 100, at(1)),
		order("AAPL", models.SideSell, 10, 110, at(2)),
	}

	trades := MatchTrades(orders)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if !tr.ProfitLoss.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected P&L 100, got %s", tr.ProfitLoss)
	}
	if tr.ProfitLossPct != 10.0 {
		t.Errorf("Expected 10%%, got %f", tr.ProfitLossPct)
	}
	if !tr.EntryTime.Equal(at(1)) || !tr.ExitTime.Equal(at(2)) {
		t.Errorf("Unexpected entry/exit times: %+v", tr)
	}
}

func TestMatchTrades_UnsortedInput(t *testing.T) {
	// Sheet rows are not necessarily time-sorted.
	orders := []models.Order{
		order("AAPL", models.SideSell, 10, 110, at(2)),
		order("AAPL", models.SideBuy, 10, 100, at(1)),
	}

	trades := MatchTrades(orders)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if !trades[0].EntryPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected entry 100, got %s", trades[0].EntryPrice)
	}
}

func TestMatchTrades_SellWithoutPriorBuy(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideSell, 10, 110, at(1)),
		order("AAPL", models.SideBuy, 10, 100, at(2)), // buy after the sell
	}

	if trades := MatchTrades(orders); len(trades) != 0 {
		t.Errorf("Expected no trades for sell without prior buy, got %d", len(trades))
	}
}

func TestMatchTrades_MostRecentPriorBuyWins(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 100, at(1)),
		order("AAPL", models.SideBuy, 10, 105, at(3)),
		order("AAPL", models.SideSell, 10, 110, at(5)),
	}

	trades := MatchTrades(orders)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if !trades[0].EntryPrice.Equal(decimal.NewFromInt(105)) {
		t.Errorf("Expected the later buy (105) as entry, got %s", trades[0].EntryPrice)
	}
}

func TestMatchTrades_BuyBacksMultipleSells(t *testing.T) {
	// Known limitation preserved on purpose: buys are not depleted, so one
	// buy can be the entry for several sells.
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 100, at(1)),
		order("AAPL", models.SideSell, 5, 110, at(2)),
		order("AAPL", models.SideSell, 5, 120, at(3)),
	}

	trades := MatchTrades(orders)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	for _, tr := range trades {
		if !tr.EntryPrice.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected both sells matched to the 100 buy, got %s", tr.EntryPrice)
		}
	}
	if !trades[0].ExitTime.Before(trades[1].ExitTime) {
		t.Errorf("Expected trades sorted by exit time")
	}
}

func TestMatchTrades_SymbolsDoNotCrossMatch(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 100, at(1)),
		order("MSFT", models.SideSell, 10, 110, at(2)),
	}

	if trades := MatchTrades(orders); len(trades) != 0 {
		t.Errorf("Expected no cross-symbol matches, got %d", len(trades))
	}
}

func TestMatchTrades_ZeroEntryPrice(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 0, at(1)),
		order("AAPL", models.SideSell, 10, 110, at(2)),
	}

	trades := MatchTrades(orders)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if trades[0].ProfitLossPct != 0 {
		t.Errorf("Expected pct 0 for zero entry price, got %f", trades[0].ProfitLossPct)
	}
	if !trades[0].ProfitLoss.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Expected absolute P&L still computed, got %s", trades[0].ProfitLoss)
	}
}

func TestMatchTrades_Idempotent(t *testing.T) {
	orders := []models.Order{
		order("AAPL", models.SideBuy, 10, 100, at(1)),
		order("AAPL", models.SideSell, 5, 110, at(2)),
		order("MSFT", models.SideBuy, 3, 300, at(1)),
		order("MSFT", models.SideSell, 3, 290, at(4)),
	}

	first := MatchTrades(orders)
	second := MatchTrades(orders)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results on re-run:\n%v\n%v", first, second)
	}
}

func TestMatchTrades_Empty(t *testing.T) {
	if trades := MatchTrades(nil); len(trades) != 0 {
		t.Errorf("Expected no trades for empty input, got %d", len(trades))
	}
}
