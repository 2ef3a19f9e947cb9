package model

import "time"

// User is the authenticated principal. Only the ID matters to the connection core;
// the rest is carried for logging and the identity endpoint.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
