package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Stats struct {
	Total            int             `json:"total"`
	Pending          int             `json:"pending"`
	Confirmed        int             `json:"confirmed"`
	Cancelled        int             `json:"cancelled"`
	Completed        int             `json:"completed"`
	Today            int             `json:"today"`
	ThisWeek         int             `json:"this_week"`
	Revenue          decimal.Decimal `json:"revenue"`
	CompletedRevenue decimal.Decimal `json:"completed_revenue"`
}

type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
)

func ParseDateRange(s string) (DateRange, bool) {
	switch DateRange(s) {
	case "", RangeAll:
		return RangeAll, true
	case RangeToday, RangeWeek:
		return DateRange(s), true
	}
	return DateRange(s), false
}

// BookingFilter narrows a booking list. Zero values match everything.
type BookingFilter struct {
	Status   BookingStatus `json:"status,omitempty"`
	Search   string        `json:"search,omitempty"`
	Range    DateRange     `json:"range,omitempty"`
	Upcoming bool          `json:"upcoming,omitempty"`
}

type Scope string

const (
	ScopeOwn      Scope = "own"
	ScopeAssigned Scope = "assigned"
	ScopeAll      Scope = "all"
)

func ParseScope(s string) (Scope, bool) {
	switch Scope(strings.ToLower(s)) {
	case "", ScopeOwn:
		return ScopeOwn, true
	case ScopeAssigned:
		return ScopeAssigned, true
	case ScopeAll:
		return ScopeAll, true
	}
	return Scope(s), false
}
