package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Barber struct {
	ID          string          `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      string          `json:"user_id" bson:"user_id"`
	DisplayName string          `json:"display_name" bson:"display_name"`
	Bio         string          `json:"bio,omitempty" bson:"bio,omitempty"`
	Specialties []string        `json:"specialties" bson:"specialties"`
	Rating      decimal.Decimal `json:"rating" bson:"rating"`
	Active      bool            `json:"active" bson:"active"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

type CreateBarberRequest struct {
	UserID      string   `json:"user_id" validate:"required,uuid"`
	DisplayName string   `json:"display_name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio         string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Specialties []string `json:"specialties,omitempty" validate:"omitempty,max=10,dive,min=2,max=50"`
}

// BarberUpdate carries a partial update; nil fields are left untouched.
type BarberUpdate struct {
	Bio         *string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Specialties *[]string `json:"specialties,omitempty" validate:"omitempty,max=10,dive,min=2,max=50"`
	Active      *bool     `json:"active,omitempty"`
}
