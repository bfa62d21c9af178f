package models

import "time"

// Department mirrors the departments table.
type Department struct {
	ID        int64
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
}
