// Package stats derives dashboard figures and list views from a snapshot of
// bookings. Everything here is a pure function of its inputs.
package stats

import (
	"sort"
	"strings"
	"time"

	"barbershop/pkg/model"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Calendar fixes "today" and "this week" for one computation.
type Calendar struct {
	Today     string
	WeekStart string
	WeekEnd   string // exclusive
}

// NewCalendar resolves now in loc. The week runs from the most recent
// weekStart day through the six days after it.
func NewCalendar(now time.Time, loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)

	return Calendar{
		Today:     day.Format(dateLayout),
		WeekStart: start.Format(dateLayout),
		WeekEnd:   start.AddDate(0, 0, 7).Format(dateLayout),
	}
}

// Booking dates are zero-padded YYYY-MM-DD, so string order is date order.

func (c Calendar) IsToday(date string) bool {
	return date == c.Today
}

func (c Calendar) InWeek(date string) bool {
	return date >= c.WeekStart && date < c.WeekEnd
}

func (c Calendar) NotBefore(date string) bool {
	return date >= c.Today
}

// Summarize counts bookings by status and by day or week, and sums snapshot
// prices. Revenue covers every booking that is not CANCELLED, pending ones
// included; CompletedRevenue covers COMPLETED only.
func Summarize(bookings []*model.Booking, cal Calendar) model.Stats {
	s := model.Stats{
		Revenue:          decimal.Zero,
		CompletedRevenue: decimal.Zero,
	}

	for _, b := range bookings {
		s.Total++

		switch b.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusConfirmed:
			s.Confirmed++
		case model.StatusCancelled:
			s.Cancelled++
		case model.StatusCompleted:
			s.Completed++
			s.CompletedRevenue = s.CompletedRevenue.Add(b.Service.Price)
		}

		if b.Status != model.StatusCancelled {
			s.Revenue = s.Revenue.Add(b.Service.Price)
		}

		if cal.IsToday(b.Date) {
			s.Today++
		}
		if cal.InWeek(b.Date) {
			s.ThisWeek++
		}
	}

	return s
}

// Matches ANDs the status, service-name search, date range and upcoming
// predicates of f.
func Matches(b *model.Booking, f model.BookingFilter, cal Calendar) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		if !strings.Contains(strings.ToLower(b.Service.Name), strings.ToLower(search)) {
			return false
		}
	}

	switch f.Range {
	case model.RangeToday:
		if !cal.IsToday(b.Date) {
			return false
		}
	case model.RangeWeek:
		if !cal.InWeek(b.Date) {
			return false
		}
	}

	if f.Upcoming {
		if b.Status != model.StatusPending && b.Status != model.StatusConfirmed {
			return false
		}
		if !cal.NotBefore(b.Date) {
			return false
		}
	}

	return true
}

// Filter keeps the input order, except that upcoming views are sorted
// soonest first.
func Filter(bookings []*model.Booking, f model.BookingFilter, cal Calendar) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if Matches(b, f, cal) {
			out = append(out, b)
		}
	}

	if f.Upcoming {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date < out[j].Date
			}
			return out[i].Time < out[j].Time
		})
	}

	return out
}
