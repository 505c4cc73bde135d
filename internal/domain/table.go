package domain

import "time"

type TableLocation string

const (
	TableLocationIndoor  TableLocation = "indoor"
	TableLocationOutdoor TableLocation = "outdoor"
)

type Table struct {
	ID     uint
	Number int
	// Location is the spatial tag used by the layout editor.
	Location TableLocation
	// CurrentOrderCount numbers orders placed against this table. It only
	// ever grows; the next order gets CurrentOrderCount + 1.
	CurrentOrderCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
