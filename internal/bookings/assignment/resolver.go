// Package assignment picks the barber for a new booking.
package assignment

import (
	"context"
	"sort"
	"time"

	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"
)

// Directory is the slice of the barber directory the resolver reads.
type Directory interface {
	GetBarber(ctx context.Context, id string) (*model.Barber, error)
	ListActiveBarbers(ctx context.Context) ([]*model.Barber, error)
}

// History reports, per barber id, when a booking was last assigned to them.
// Barbers that never received one are absent from the map.
type History interface {
	LastAssignedAt(ctx context.Context, barberIDs []string) (map[string]time.Time, error)
}

type Resolver struct {
	directory Directory
	history   History
	log       *logger.Logger
}

func NewResolver(directory Directory, history History, log *logger.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		history:   history,
		log:       log,
	}
}

// Resolve returns the barber a booking should be assigned to, or nil when no
// active barber exists. An explicitly requested barber must exist and be
// active; it is never swapped for another one. Nothing is reserved, so
// concurrent bookings may receive the same barber.
func (r *Resolver) Resolve(ctx context.Context, requestedBarberID string) (*model.Barber, error) {
	if requestedBarberID != "" {
		return r.requested(ctx, requestedBarberID)
	}

	barbers, err := r.directory.ListActiveBarbers(ctx)
	if err != nil {
		return nil, err
	}
	if len(barbers) == 0 {
		r.log.Warn("No active barbers, booking will be unassigned")
		return nil, nil
	}

	ids := make([]string, 0, len(barbers))
	for _, b := range barbers {
		ids = append(ids, b.ID)
	}

	last, err := r.history.LastAssignedAt(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to read assignment history", err)
	}

	// The active list may be served from a cache that lags a deactivation,
	// so each candidate is re-read before it is handed out.
	for _, candidate := range rankByLeastRecent(barbers, last) {
		current, err := r.directory.GetBarber(ctx, candidate.ID)
		switch {
		case apperrors.HasCode(err, apperrors.CodeNotFound):
			r.log.Warn("Listed barber no longer exists", "barber_id", candidate.ID)
			continue
		case err != nil:
			return nil, err
		case !current.Active:
			r.log.Warn("Listed barber is inactive, skipping", "barber_id", candidate.ID)
			continue
		}

		r.log.Debug("Barber selected",
			"barber_id", current.ID,
			"candidates", len(barbers),
		)
		return current, nil
	}

	r.log.Warn("No listed barber is still active, booking will be unassigned", "candidates", len(barbers))
	return nil, nil
}

func (r *Resolver) requested(ctx context.Context, id string) (*model.Barber, error) {
	barber, err := r.directory.GetBarber(ctx, id)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			return nil, apperrors.InvalidBarber(id, "not found")
		}
		return nil, err
	}
	if !barber.Active {
		return nil, apperrors.InvalidBarber(id, "inactive")
	}
	return barber, nil
}

// rankByLeastRecent orders barbers never assigned first, then by oldest last
// assignment. Ties break on barber id so the choice is reproducible.
func rankByLeastRecent(barbers []*model.Barber, last map[string]time.Time) []*model.Barber {
	sorted := make([]*model.Barber, len(barbers))
	copy(sorted, barbers)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, iSeen := last[sorted[i].ID]
		tj, jSeen := last[sorted[j].ID]
		switch {
		case iSeen != jSeen:
			return !iSeen
		case iSeen && !ti.Equal(tj):
			return ti.Before(tj)
		default:
			return sorted[i].ID < sorted[j].ID
		}
	})

	return sorted
}
