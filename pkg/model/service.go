package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry.
type Service struct {
	ID              string          `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes" bson:"duration_minutes"`
	Price           decimal.Decimal `json:"price" bson:"price"`
	Active          bool            `json:"active" bson:"active"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

func (s *Service) Snapshot() ServiceSnapshot {
	return ServiceSnapshot{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
	}
}
