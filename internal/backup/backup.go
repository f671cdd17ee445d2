// Package backup encodes the whole local store into a portable document.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pomotaro/internal/model"
)

// Version is the document format written by this build.
const Version = 1

// Format selects the document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown backup format %q", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Document is a full export of settings, history, tasks and categories.
type Document struct {
	Version    int                   `json:"version" yaml:"version"`
	ExportedAt time.Time             `json:"exportedAt" yaml:"exportedAt"`
	Settings   model.Settings        `json:"settings" yaml:"settings"`
	History    []model.SessionRecord `json:"history" yaml:"history"`
	Tasks      []model.Task          `json:"tasks" yaml:"tasks"`
	Categories []model.Category      `json:"categories" yaml:"categories"`
}

// Encode writes doc to w.
func Encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Decode reads and validates a document. Settings missing from it keep
// their defaults.
func Decode(r io.Reader, f Format) (Document, error) {
	doc := Document{Settings: model.DefaultSettings()}
	switch f {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks the version and id uniqueness of every list.
func (d Document) Validate() error {
	if d.Version < 1 || d.Version > Version {
		return fmt.Errorf("unsupported backup version %d", d.Version)
	}
	if err := uniqueIDs("history", len(d.History), func(i int) string { return d.History[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("tasks", len(d.Tasks), func(i int) string { return d.Tasks[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("categories", len(d.Categories), func(i int) string { return d.Categories[i].ID }); err != nil {
		return err
	}
	for _, r := range d.History {
		if !r.SessionType.Valid() {
			return fmt.Errorf("history record %s: unknown session type %q", r.ID, r.SessionType)
		}
	}
	return nil
}

// MergeHistory appends incoming records whose ids are not in existing and
// returns the merged list with the number of records added.
func MergeHistory(existing, incoming []model.SessionRecord) ([]model.SessionRecord, int) {
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}
	merged := append([]model.SessionRecord{}, existing...)
	added := 0
	for _, r := range incoming {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
		added++
	}
	return merged, added
}

func uniqueIDs(what string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return fmt.Errorf("%s[%d]: missing id", what, i)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%s: duplicate id %s", what, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
