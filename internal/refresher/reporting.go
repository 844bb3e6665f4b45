package refresher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"trading_dashboard/internal/models"
)

// CommandDoc describes one chat command for /help.
type CommandDoc struct {
	Command     string
	Description string
}

var commands = []CommandDoc{
	{"/ping", "Connectivity check"},
	{"/status", "Full text dashboard"},
	{"/alerts", "Current risk alerts"},
	{"/refresh", "Invalidate the sheet client and reload now"},
	{"/help", "This list"},
}

// HandleCommand serves the Telegram command surface.
func (r *Refresher) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "Unknown command. Try /help"
	}
	switch fields[0] {
	case "/ping":
		return "🏓 pong"
	case "/status":
		snap, ok := r.Snapshot()
		if !ok {
			return "💤 No data yet — first refresh still running."
		}
		return BuildDashboard(snap)
	case "/alerts":
		snap, ok := r.Snapshot()
		if !ok {
			return "💤 No data yet."
		}
		return buildAlertSection(snap.Risk)
	case "/refresh":
		snap := r.RefreshNow(context.Background())
		return fmt.Sprintf("🔄 Refreshed at %s\n\n%s",
			snap.LoadedAt.Format("15:04:05"), BuildDashboard(snap))
	case "/help":
		var sb strings.Builder
		sb.WriteString("📖 *COMMANDS*\n")
		for _, c := range commands {
			sb.WriteString(fmt.Sprintf("%s — %s\n", c.Command, c.Description))
		}
		return sb.String()
	default:
		return "Unknown command. Try /help"
	}
}

// BuildDashboard renders one snapshot as the Telegram text dashboard,
// mirroring the sections of the web view.
func BuildDashboard(snap models.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *TRADING DASHBOARD* — %s\n", marketStatusLabel(snap.MarketStatus)))
	sb.WriteString(fmt.Sprintf("🕐 %s\n\n", snap.LoadedAt.Format("2006-01-02 15:04:05")))

	// Capital
	s := snap.Summary
	sb.WriteString("💰 *CAPITAL*\n")
	sb.WriteString(fmt.Sprintf("Total: %s | Invested: %s (%s) | Cash: %s\n\n",
		won(s.Capital), won(s.Invested), pctOf(s.Invested, s.Capital), won(s.Cash)))

	// Today's P&L
	total := s.RealizedPnlToday.Add(s.UnrealizedPnl)
	sb.WriteString("📈 *TODAY'S P&L*\n")
	sb.WriteString(fmt.Sprintf("Realized: %s | Unrealized: %s | Total: %s\n\n",
		signedWon(s.RealizedPnlToday), signedWon(s.UnrealizedPnl), signedWon(total)))

	// Cumulative performance
	st := snap.Stats
	sb.WriteString("🎯 *CUMULATIVE*\n")
	sb.WriteString(fmt.Sprintf("Realized: %s (%+.2f%%) over %d days, avg %s/day\n",
		signedWon(st.CumulativeRealizedPnl), st.CumulativeReturnPct, st.TradingDays, signedWon(st.AvgDailyPnl)))
	sb.WriteString(fmt.Sprintf("Win rate today: %.1f%% (%dW %dL) | cumulative: %.1f%% (%dW %dL)\n\n",
		st.TodayWinRate, st.WinsToday, st.LossesToday,
		st.CumulativeWinRate, st.WinsCumulative, st.LossesCumulative))

	// Today's activity
	sb.WriteString("🔥 *TODAY'S ACTIVITY*\n")
	sb.WriteString(fmt.Sprintf("Trades: %d | Buys: %d (%s) | Sells: %d (%s)\n\n",
		st.TotalTrades, st.BuyCount, won(st.BuyAmount), st.SellCount, won(st.SellAmount)))

	// Positions
	sb.WriteString("📍 *POSITIONS*\n")
	if len(snap.Positions) == 0 {
		sb.WriteString("No open positions.\n")
	} else {
		for _, p := range snap.Positions {
			sb.WriteString(fmt.Sprintf("%s %s: %d @ %s (%.2f%%)\n",
				weightGlyph(p.WeightFraction), p.Symbol, p.Quantity, won(p.EntryPrice), p.WeightFraction*100))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(buildAlertSection(snap.Risk))

	if len(snap.LoadErrors) > 0 {
		sb.WriteString("\n⚠️ *DEGRADED DOMAINS*\n")
		for domain := range snap.LoadErrors {
			sb.WriteString(fmt.Sprintf("• %s failed to load (showing empty)\n", domain))
		}
	}

	return sb.String()
}

func buildAlertSection(report models.RiskReport) string {
	var sb strings.Builder
	sb.WriteString("⚠️ *RISK*\n")
	switch {
	case !report.Evaluated:
		sb.WriteString("💤 Nothing to evaluate yet.\n")
	case report.AllClear():
		sb.WriteString("✅ All clear.\n")
	default:
		for _, a := range report.Alerts {
			glyph := "🟡"
			if a.Severity == models.SeverityCritical {
				glyph = "🔴"
			}
			sb.WriteString(fmt.Sprintf("%s %s\n", glyph, a.Message))
		}
	}
	return sb.String()
}

func marketStatusLabel(status models.MarketStatus) string {
	switch status {
	case models.MarketOpen:
		return "🟢 OPEN"
	case models.MarketPreOpen:
		return "🟡 PRE-OPEN"
	case models.MarketWeekend:
		return "🔴 WEEKEND"
	default:
		return "🔴 CLOSED"
	}
}

// weightGlyph marks a position by how close it is to the concentration limit.
func weightGlyph(weight float64) string {
	switch {
	case weight > 0.15:
		return "🔴"
	case weight > 0.10:
		return "🟡"
	default:
		return "🟢"
	}
}

// won formats a rounded amount with thousands separators.
func won(d decimal.Decimal) string {
	return groupDigits(d.Round(0).IntPart()) + "원"
}

func signedWon(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + won(d)
	}
	return won(d)
}

func pctOf(part, whole decimal.Decimal) string {
	if !whole.IsPositive() {
		return "0.0%"
	}
	f, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return fmt.Sprintf("%.1f%%", f)
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
