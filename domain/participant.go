// Package domain contains core concepts of the chat system.
// This file defines Profile, the public face of a participant, and the
// Principal authenticated for a request.
// No runtime, network, or UI logic should be added here.
package domain

import "slices"

type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

const RoleAdmin = "admin"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
