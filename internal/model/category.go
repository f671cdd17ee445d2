package model

import "time"

// Category groups study sessions by subject (math, languages, reading, etc.).
type Category struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     string    `json:"color" yaml:"color"`
	Icon      string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}
