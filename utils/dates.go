// utils/dates.go
package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	DateLayout       = "2006-01-02"
	DefaultRangeDays = 30
	MaxRangeMonths   = 6
)

var ErrInvalidDateRange = errors.New("invalid date range")

// Calendar computes day, week and month boundaries in the shop's local timezone.
// Every boundary it returns is in UTC, which is how timestamps are stored.
type Calendar struct {
	loc *time.Location
	cfg *now.Config
	Now func() time.Time
}

func NewCalendar(loc *time.Location) *Calendar {
	return &Calendar{
		loc: loc,
		cfg: &now.Config{WeekStartDay: time.Sunday, TimeLocation: loc},
		Now: time.Now,
	}
}

func LoadCalendar(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewCalendar(loc), nil
}

func (c *Calendar) Location() *time.Location { return c.loc }

// Local converts t to the calendar's timezone.
func (c *Calendar) Local(t time.Time) time.Time { return t.In(c.loc) }

func (c *Calendar) at(t time.Time) *now.Now {
	return c.cfg.With(t.In(c.loc))
}

func (c *Calendar) StartOfDay(t time.Time) time.Time {
	return c.at(t).BeginningOfDay().UTC()
}

func (c *Calendar) EndOfDay(t time.Time) time.Time {
	return c.at(t).EndOfDay().UTC()
}

func (c *Calendar) StartOfWeek(t time.Time) time.Time {
	return c.at(t).BeginningOfWeek().UTC()
}

func (c *Calendar) StartOfMonth(t time.Time) time.Time {
	return c.at(t).BeginningOfMonth().UTC()
}

// Today returns the UTC bounds of the current local day.
func (c *Calendar) Today() DateRange {
	t := c.Now()
	return DateRange{Start: c.StartOfDay(t), End: c.EndOfDay(t)}
}

// Day returns the UTC bounds of a YYYY-MM-DD local day.
func (c *Calendar) Day(s string) (DateRange, error) {
	t, err := c.ParseDay(s)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: c.StartOfDay(t), End: c.EndOfDay(t)}, nil
}

// ParseDay parses a YYYY-MM-DD string as local midnight.
func (c *Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateRange, s)
	}
	return t, nil
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// BuildDateRange resolves optional start/end query dates into a bounded window:
// start only spans DefaultRangeDays forward, end only spans DefaultRangeDays back,
// neither covers the last DefaultRangeDays up to today, and any span longer than
// MaxRangeMonths is cut to start+MaxRangeMonths.
func (c *Calendar) BuildDateRange(startStr, endStr string) (DateRange, error) {
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)

	var start, end time.Time
	switch {
	case startStr != "" && endStr != "":
		s, err := c.ParseDay(startStr)
		if err != nil {
			return DateRange{}, err
		}
		e, err := c.ParseDay(endStr)
		if err != nil {
			return DateRange{}, err
		}
		if e.Before(s) {
			return DateRange{}, fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
		}
		start, end = s, e
	case startStr != "":
		s, err := c.ParseDay(startStr)
		if err != nil {
			return DateRange{}, err
		}
		start, end = s, s.AddDate(0, 0, DefaultRangeDays)
	case endStr != "":
		e, err := c.ParseDay(endStr)
		if err != nil {
			return DateRange{}, err
		}
		start, end = e.AddDate(0, 0, -DefaultRangeDays), e
	default:
		today := c.Now().In(c.loc)
		start, end = today.AddDate(0, 0, -DefaultRangeDays), today
	}

	if limit := start.AddDate(0, MaxRangeMonths, 0); end.After(limit) {
		end = limit
	}

	return DateRange{Start: c.StartOfDay(start), End: c.EndOfDay(end)}, nil
}
