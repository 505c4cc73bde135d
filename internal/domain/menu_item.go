package domain

import "time"

type MenuItem struct {
	ID          uint
	Name        string
	Category    string
	Price       float64
	IsAvailable bool
	// Stock may go negative; that is a diagnostic signal for the admin,
	// never clamped silently.
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
