package model

import "strings"

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleBarber Role = "BARBER"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch role {
	case RoleClient, RoleBarber, RoleAdmin:
		return role, true
	}
	return role, false
}

// Actor is the already-authenticated caller of an engine operation.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
