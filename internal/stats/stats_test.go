package stats

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
)

func histDay(date string, capital, rpnl float64, wins, losses int) models.HistoryDay {
	d, _ := time.Parse("20060102", date)
	return models.HistoryDay{
		Date:        d,
		Capital:     decimal.NewFromFloat(capital),
		RealizedPnl: decimal.NewFromFloat(rpnl),
		Wins:        wins,
		Losses:      losses,
	}
}

func sellOrder(result string) models.Order {
	return models.Order{
		Symbol:     "005930",
		Side:       models.SideSell,
		Quantity:   1,
		Price:      decimal.NewFromInt(100),
		ResultText: result,
	}
}

func TestCompute_EmptyInputs(t *testing.T) {
	s := Compute(nil, nil)

	if s.TotalTrades != 0 || s.BuyCount != 0 || s.SellCount != 0 {
		t.Errorf("Expected zero counts, got %+v", s)
	}
	if !s.CumulativeRealizedPnl.IsZero() || !s.AvgDailyPnl.IsZero() {
		t.Errorf("Expected zero P&L, got %+v", s)
	}
	if s.TodayWinRate != 0 || s.CumulativeWinRate != 0 {
		t.Errorf("Expected zero win rates on empty denominators, got %+v", s)
	}
}

func TestCompute_CumulativePnlIsOrderIndependent(t *testing.T) {
	a := []models.HistoryDay{
		histDay("20260114", 1000000, 500, 1, 0),
		histDay("20260115", 1000000, -200, 0, 1),
		histDay("20260116", 1000000, 300, 1, 0),
	}
	b := []models.HistoryDay{a[2], a[0], a[1]}

	sa := Compute(a, nil)
	sb := Compute(b, nil)
	if !sa.CumulativeRealizedPnl.Equal(sb.CumulativeRealizedPnl) {
		t.Errorf("Sum should be commutative: %s vs %s",
			sa.CumulativeRealizedPnl, sb.CumulativeRealizedPnl)
	}
	if !sa.CumulativeRealizedPnl.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected 600, got %s", sa.CumulativeRealizedPnl)
	}
}

func TestCompute_AvgDailyTimesDaysEqualsCumulative(t *testing.T) {
	history := []models.HistoryDay{
		histDay("20260114", 1000000, 100, 0, 0),
		histDay("20260115", 1000000, 250, 0, 0),
		histDay("20260116", 1000000, -50, 0, 0),
	}

	s := Compute(history, nil)
	product, _ := s.AvgDailyPnl.Mul(decimal.NewFromInt(int64(s.TradingDays))).Float64()
	cumulative, _ := s.CumulativeRealizedPnl.Float64()
	if math.Abs(product-cumulative) > 1e-6 {
		t.Errorf("avg*days=%f != cumulative=%f", product, cumulative)
	}
}

func TestCompute_CumulativeReturnUsesFirstDayCapital(t *testing.T) {
	history := []models.HistoryDay{
		histDay("20260114", 1000000, 5000, 0, 0),
		histDay("20260115", 2000000, 5000, 0, 0), // later capital must not matter
	}

	s := Compute(history, nil)
	if math.Abs(s.CumulativeReturnPct-1.0) > 1e-9 {
		t.Errorf("Expected 10000/1000000*100 = 1%%, got %f", s.CumulativeReturnPct)
	}
}

func TestCompute_ZeroFirstDayCapital(t *testing.T) {
	history := []models.HistoryDay{histDay("20260114", 0, 5000, 0, 0)}

	s := Compute(history, nil)
	if s.CumulativeReturnPct != 0 {
		t.Errorf("Expected 0 return for zero first-day capital, got %f", s.CumulativeReturnPct)
	}
}

func TestCompute_CumulativeWinRate(t *testing.T) {
	// wins [3,2], losses [1,0] → 5/6 ≈ 83.33
	history := []models.HistoryDay{
		histDay("20260114", 1000000, 0, 3, 1),
		histDay("20260115", 1000000, 0, 2, 0),
	}

	s := Compute(history, nil)
	if s.WinsCumulative != 5 || s.LossesCumulative != 1 {
		t.Fatalf("Expected 5W/1L, got %dW/%dL", s.WinsCumulative, s.LossesCumulative)
	}
	if math.Abs(s.CumulativeWinRate-83.3333333) > 0.001 {
		t.Errorf("Expected ~83.33, got %f", s.CumulativeWinRate)
	}
	if s.CumulativeWinRate < 0 || s.CumulativeWinRate > 100 {
		t.Errorf("Win rate out of range: %f", s.CumulativeWinRate)
	}
}

func TestCompute_TodayWinRate(t *testing.T) {
	orders := []models.Order{
		{Symbol: "005930", Side: models.SideBuy, Quantity: 10, Price: decimal.NewFromInt(100)},
		sellOrder("SELL executed rpnl=5,000 won"),
		sellOrder("SELL executed rpnl=-5,000 won"),
		sellOrder("SELL executed rpnl=0"),
		sellOrder("SELL partial fill"), // no token: excluded from denominator
	}

	s := Compute(nil, orders)
	if s.TotalTrades != 5 || s.BuyCount != 1 || s.SellCount != 4 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.WinsToday != 1 || s.LossesToday != 2 {
		t.Errorf("Expected 1W/2L (zero counts as loss, unparseable excluded), got %dW/%dL",
			s.WinsToday, s.LossesToday)
	}
	if math.Abs(s.TodayWinRate-33.3333333) > 0.001 {
		t.Errorf("Expected ~33.33, got %f", s.TodayWinRate)
	}
}

func TestCompute_SideAmounts(t *testing.T) {
	orders := []models.Order{
		{Side: models.SideBuy, Symbol: "A", Quantity: 10, Price: decimal.NewFromInt(100)},
		{Side: models.SideBuy, Symbol: "B", Quantity: 2, Price: decimal.NewFromInt(50)},
		{Side: models.SideSell, Symbol: "A", Quantity: 5, Price: decimal.NewFromInt(110)},
	}

	s := Compute(nil, orders)
	if !s.BuyAmount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Expected buy amount 1100, got %s", s.BuyAmount)
	}
	if !s.SellAmount.Equal(decimal.NewFromInt(550)) {
		t.Errorf("Expected sell amount 550, got %s", s.SellAmount)
	}
}

func TestParseRealizedPnl(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"SELL executed rpnl=-5,000 won", -5000, true},
		{"rpnl=1234.5", 1234.5, true},
		{"done rpnl=0 flat", 0, true},
		{"rpnl= 42", 42, true}, // tolerated: first token after the marker
		{"no marker here", 0, false},
		{"rpnl=", 0, false},
		{"rpnl=abc", 0, false},
		{"", 0, false},
	}

	for _, c := range cases {
		got, ok := ParseRealizedPnl(c.in)
		if ok != c.ok {
			t.Errorf("%q: expected ok=%v, got %v", c.in, c.ok, ok)
			continue
		}
		if ok && !got.Equal(decimal.NewFromFloat(c.want)) {
			t.Errorf("%q: expected %f, got %s", c.in, c.want, got)
		}
	}
}

func TestCumulativeCurve(t *testing.T) {
	history := []models.HistoryDay{
		histDay("20260114", 1000000, 100, 0, 0),
		histDay("20260115", 1000000, -40, 0, 0),
		histDay("20260116", 1000000, 10, 0, 0),
	}

	curve := CumulativeCurve(history)
	if len(curve) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(curve))
	}
	if !curve[1].Cumulative.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected running sum 60, got %s", curve[1].Cumulative)
	}
	if !curve[2].Cumulative.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected final 70, got %s", curve[2].Cumulative)
	}
	if curve[0].Date != "2026-01-14" {
		t.Errorf("Unexpected date format: %s", curve[0].Date)
	}

	if pts := CumulativeCurve(nil); len(pts) != 0 {
		t.Errorf("Expected empty curve, got %d", len(pts))
	}
}
