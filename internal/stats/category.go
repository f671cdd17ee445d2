package stats

import (
	"sort"
	"strings"

	"pomotaro/internal/model"
)

// Uncategorized labels records that were logged without a category.
const Uncategorized = "Uncategorized"

// CategoryTotal is the study time attributed to one category.
type CategoryTotal struct {
	CategoryID string  `json:"categoryId,omitempty"`
	Name       string  `json:"name"`
	Seconds    int     `json:"seconds"`
	Sessions   int     `json:"sessions"`
	Share      float64 `json:"share"`
}

// ByCategory splits matching records by category. Names come from the
// records themselves so deleted categories keep showing up under their last
// known name. Results are sorted by time spent, largest first.
func ByCategory(records []model.SessionRecord, f Filter) []CategoryTotal {
	byID := make(map[string]*CategoryTotal)
	total := 0
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		id := r.CategoryID
		ct, ok := byID[id]
		if !ok {
			ct = &CategoryTotal{CategoryID: id, Name: Uncategorized}
			byID[id] = ct
		}
		if name := strings.TrimSpace(r.CategoryName); id != "" && name != "" {
			ct.Name = name
		}
		ct.Seconds += r.Duration
		ct.Sessions++
		total += r.Duration
	}

	out := make([]CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		if total > 0 {
			ct.Share = float64(ct.Seconds) / float64(total)
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TaskTotal is the study time logged against one task title.
type TaskTotal struct {
	Name     string `json:"name"`
	Seconds  int    `json:"seconds"`
	Sessions int    `json:"sessions"`
}

// ByTask splits matching records by task name; records without a task are skipped.
func ByTask(records []model.SessionRecord, f Filter) []TaskTotal {
	byName := make(map[string]*TaskTotal)
	for _, r := range records {
		name := strings.TrimSpace(r.TaskName)
		if name == "" || !f.Match(r) {
			continue
		}
		tt, ok := byName[name]
		if !ok {
			tt = &TaskTotal{Name: name}
			byName[name] = tt
		}
		tt.Seconds += r.Duration
		tt.Sessions++
	}
	out := make([]TaskTotal, 0, len(byName))
	for _, tt := range byName {
		out = append(out, *tt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Name < out[j].Name
	})
	return out
}
