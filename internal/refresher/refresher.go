// Package refresher runs the dashboard pipeline: load sheet domains,
// normalize, reconstruct trades, aggregate statistics, evaluate risk, and
// publish the resulting snapshot.
package refresher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"trading_dashboard/internal/config"
	"trading_dashboard/internal/matcher"
	"trading_dashboard/internal/models"
	"trading_dashboard/internal/normalize"
	"trading_dashboard/internal/risk"
	"trading_dashboard/internal/session"
	"trading_dashboard/internal/sheets"
	"trading_dashboard/internal/stats"
	"trading_dashboard/internal/storage"
	"trading_dashboard/internal/telegram"
)

// Refresher owns the load→compute→publish cycle. Cycles run one at a time;
// a new one starts only after the previous finished, so derived values are
// never mutated concurrently. Render surfaces read whole snapshots through
// Snapshot().
type Refresher struct {
	store sheets.Store
	cfg   *config.Config
	clock session.Clock
	eval  risk.Evaluator
	loc   *time.Location

	// cycleMu serializes cycles. Refresh is reachable from the ticker loop,
	// the HTTP refresh handler, and the Telegram listener; cycle state
	// (lastCriticalPing, the snapshot temp file) assumes one cycle at a time.
	cycleMu sync.Mutex

	mu      sync.RWMutex
	snap    models.Snapshot
	hasSnap bool

	// lastCriticalPing maps symbol → trading date of the last pushed
	// CRITICAL alert, so a breach pings the chat once per day, not once per
	// cycle (alert fatigue).
	lastCriticalPing map[string]string

	// Injection points for tests.
	now    func() time.Time
	notify func(string)
}

// New builds a refresher. If a snapshot was persisted by a previous run it is
// served until the first cycle completes.
func New(cfg *config.Config, store sheets.Store) *Refresher {
	loc := cfg.Location()
	r := &Refresher{
		store:            store,
		cfg:              cfg,
		clock:            session.NewClock(loc),
		eval:             risk.NewEvaluator(cfg.Risk.MaxPositionWeight, cfg.Risk.MaxAllocationUtilization),
		loc:              loc,
		lastCriticalPing: make(map[string]string),
		now:              time.Now,
		notify:           telegram.Notify,
	}

	if snap, ok, err := storage.LoadSnapshot(cfg.SnapshotFile); err != nil {
		log.Printf("Warning: could not load persisted snapshot: %v", err)
	} else if ok {
		r.snap = snap
		r.hasSnap = true
		log.Printf("Serving persisted snapshot from %s until first refresh", snap.LoadedAt.Format(time.RFC3339))
	}

	return r
}

// Run refreshes immediately, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(time.Duration(r.cfg.RefreshIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresher stopping...")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Snapshot returns the last published snapshot. ok is false before the first
// cycle completes when no persisted snapshot was available either.
func (r *Refresher) Snapshot() (models.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap, r.hasSnap
}

// RefreshNow drops the cached sheet client and runs one cycle. This is the
// manual-refresh path (HTTP or Telegram).
func (r *Refresher) RefreshNow(ctx context.Context) models.Snapshot {
	r.store.Invalidate()
	return r.Refresh(ctx)
}

// Refresh runs one full cycle and publishes the result. Domain load failures
// degrade that domain to empty and are recorded on the snapshot; nothing here
// aborts the cycle.
func (r *Refresher) Refresh(ctx context.Context) models.Snapshot {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	started := r.now()
	now := started.In(r.loc)

	snap := models.Snapshot{
		LoadedAt:     now,
		MarketStatus: r.clock.Status(now),
		LoadErrors:   make(map[string]string),
	}
	record := func(le *models.LoadError) {
		if le != nil {
			log.Printf("WARN: %v", le)
			snap.LoadErrors[le.Domain] = le.Error()
		}
	}

	var le *models.LoadError
	snap.Summary, snap.Positions, le = r.loadPortfolio(ctx)
	record(le)

	snap.HistoryDays, le = r.loadHistory(ctx)
	record(le)

	names, namesErr := r.store.ListSheetNames(ctx)
	if namesErr != nil {
		// Without the sheet list neither daily domain can resolve its tab.
		record(models.NewLoadError("orders", models.IoFailure, namesErr))
		record(models.NewLoadError("signals", models.IoFailure, namesErr))
	} else {
		snap.Orders, le = r.loadOrders(ctx, names, now)
		record(le)

		snap.Signals, le = r.loadSignals(ctx, names, now)
		record(le)
	}

	snap.Trades = matcher.MatchTrades(snap.Orders)
	snap.Stats = stats.Compute(snap.HistoryDays, snap.Orders)
	snap.Risk = r.eval.Evaluate(snap.Positions, snap.Summary)

	if len(snap.LoadErrors) == 0 {
		snap.LoadErrors = nil
	}

	r.publish(snap)
	log.Printf("Refresh complete in %s: %d positions, %d orders, %d trades, %d alerts",
		time.Since(started).Round(time.Millisecond),
		len(snap.Positions), len(snap.Orders), len(snap.Trades), len(snap.Risk.Alerts))
	return snap
}

func (r *Refresher) publish(snap models.Snapshot) {
	r.mu.Lock()
	r.snap = snap
	r.hasSnap = true
	r.mu.Unlock()

	if err := storage.SaveSnapshot(r.cfg.SnapshotFile, snap); err != nil {
		log.Printf("Warning: could not persist snapshot: %v", err)
	}

	r.pushCriticalAlerts(snap)
}

// pushCriticalAlerts notifies the chat about CRITICAL breaches, at most once
// per symbol per trading day.
func (r *Refresher) pushCriticalAlerts(snap models.Snapshot) {
	dayKey := snap.LoadedAt.Format("20060102")
	for _, a := range snap.Risk.Alerts {
		if a.Severity != models.SeverityCritical {
			continue
		}
		if r.lastCriticalPing[a.Symbol] == dayKey {
			continue
		}
		r.lastCriticalPing[a.Symbol] = dayKey
		r.notify(fmt.Sprintf("🚨 *RISK ALERT*\n%s", a.Message))
	}
}

// loadPortfolio reads the fixed summary cells and the position table from the
// portfolio sheet.
func (r *Refresher) loadPortfolio(ctx context.Context) (models.Summary, []models.Position, *models.LoadError) {
	summaryRows, err := r.store.GetRows(ctx, r.cfg.Sheets.Portfolio, r.cfg.Sheets.SummaryRange)
	if err != nil {
		return models.Summary{}, nil, models.NewLoadError("portfolio", models.IoFailure, err)
	}
	tableRows, err := r.store.GetRows(ctx, r.cfg.Sheets.Portfolio, r.cfg.Sheets.PositionRange)
	if err != nil {
		return models.Summary{}, nil, models.NewLoadError("portfolio", models.IoFailure, err)
	}
	return normalize.Summary(summaryRows), normalize.Positions(tableRows), nil
}

func (r *Refresher) loadHistory(ctx context.Context) ([]models.HistoryDay, *models.LoadError) {
	rows, err := r.store.GetRows(ctx, r.cfg.Sheets.History, "")
	if err != nil {
		return nil, models.NewLoadError("history", models.IoFailure, err)
	}
	return normalize.HistoryDays(rows), nil
}

// resolveDailySheet picks today's date-suffixed sheet, or the most recent one
// for the prefix when today's doesn't exist (weekend, pre-open). Returns the
// sheet name and the trading date its rows belong to.
func (r *Refresher) resolveDailySheet(prefix string, names []string, now time.Time) (string, time.Time, bool) {
	today := r.clock.TradingDate(now)
	todaySheet := prefix + today.Format("20060102")
	for _, n := range names {
		if n == todaySheet {
			return todaySheet, today, true
		}
	}

	latest := sheets.LatestSheetWithPrefix(names, prefix)
	if latest == "" {
		return "", time.Time{}, false
	}
	day, err := time.ParseInLocation("20060102", latest[len(prefix):], r.loc)
	if err != nil {
		day = today
	}
	return latest, day, true
}

func (r *Refresher) loadOrders(ctx context.Context, names []string, now time.Time) ([]models.Order, *models.LoadError) {
	name, day, ok := r.resolveDailySheet(r.cfg.Sheets.OrderPrefix, names, now)
	if !ok {
		return nil, nil // no order sheet yet: genuinely no data
	}
	recs, err := r.store.GetAllRecords(ctx, name)
	if err != nil {
		return nil, models.NewLoadError("orders", models.IoFailure, err)
	}
	return normalize.Orders(recs, day, r.loc), nil
}

func (r *Refresher) loadSignals(ctx context.Context, names []string, now time.Time) ([]models.Signal, *models.LoadError) {
	name, day, ok := r.resolveDailySheet(r.cfg.Sheets.SignalPrefix, names, now)
	if !ok {
		return nil, nil // no signal sheet yet: genuinely no data
	}
	recs, err := r.store.GetAllRecords(ctx, name)
	if err != nil {
		return nil, models.NewLoadError("signals", models.IoFailure, err)
	}
	return normalize.Signals(recs, day, r.loc), nil
}
