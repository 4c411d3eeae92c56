package entity

import "time"

// User mirrors an identity-provider account. Id is the provider's opaque user id.
type User struct {
	Id        string
	Email     string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
