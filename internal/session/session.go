// Package session derives the market status from wall-clock time.
package session

import (
	"time"

	"trading_dashboard/internal/models"
)

// Clock maps a local time onto the trading session. There is no holiday
// calendar: weekdays outside Saturday/Sunday always count as trading days.
type Clock struct {
	Location  *time.Location
	OpenHour  int
	OpenMin   int
	CloseHour int
	CloseMin  int
}

// NewClock returns a clock for the standard 09:00–15:30 session.
func NewClock(loc *time.Location) Clock {
	return Clock{Location: loc, OpenHour: 9, CloseHour: 15, CloseMin: 30}
}

// Status classifies now against the session boundaries. The close is
// inclusive: the market reads OPEN at exactly 15:30.
func (c Clock) Status(now time.Time) models.MarketStatus {
	now = now.In(c.Location)

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return models.MarketWeekend
	}

	open := time.Date(now.Year(), now.Month(), now.Day(), c.OpenHour, c.OpenMin, 0, 0, c.Location)
	close := time.Date(now.Year(), now.Month(), now.Day(), c.CloseHour, c.CloseMin, 0, 0, c.Location)

	switch {
	case now.Before(open):
		return models.MarketPreOpen
	case !now.After(close):
		return models.MarketOpen
	default:
		return models.MarketClosed
	}
}

// TradingDate returns the calendar date (midnight in the session's location)
// used to suffix the day's order and signal sheets.
func (c Clock) TradingDate(now time.Time) time.Time {
	now = now.In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
}
