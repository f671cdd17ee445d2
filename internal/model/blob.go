package model

import "time"

// Blob is a single key/value entry of the local store.
type Blob struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
