package statusapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pomotaro/internal/model"
	"pomotaro/internal/presence"
	"pomotaro/internal/service"
	"pomotaro/internal/stats"
	"pomotaro/internal/timer"
)

const maxSeriesPeriods = 366

type handler struct {
	sessions *service.SessionService
	stats    *service.StatsService
	now      func() time.Time
}

// StatusResponse is the timer state plus what it is attributed to.
type StatusResponse struct {
	timer.Snapshot
	Clock        string `json:"clock"`
	Label        string `json:"label"`
	TaskName     string `json:"taskName,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
}

// PresenceResponse is the activity with its one line rendering.
type PresenceResponse struct {
	presence.Activity
	Title string `json:"title"`
}

func (h *handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// Health handles GET /healthz
func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status handles GET /api/v1/status
func (h *handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

func (h *handler) status() StatusResponse {
	snap := h.sessions.Snapshot()
	_, task := h.sessions.ActiveTask()
	_, category := h.sessions.ActiveCategory()
	return StatusResponse{
		Snapshot:     snap,
		Clock:        timer.FormatClock(snap.Remaining),
		Label:        snap.SessionType.Label(),
		TaskName:     task,
		CategoryName: category,
	}
}

// Presence handles GET /api/v1/presence
func (h *handler) Presence(w http.ResponseWriter, r *http.Request) {
	a := h.sessions.Presence()
	writeJSON(w, http.StatusOK, PresenceResponse{Activity: a, Title: a.Title()})
}

// Summary handles GET /api/v1/stats/summary
func (h *handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context(), h.clock())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Series handles GET /api/v1/stats/series?by=day&days=7&category=<id>
func (h *handler) Series(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, err := stats.ParseGranularity(q.Get("by"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := 7
	if raw := q.Get("days"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSeriesPeriods {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
	}
	f := stats.FocusOnly()
	f.CategoryID = q.Get("category")
	if raw := q.Get("types"); raw != "" {
		f.Types = nil
		for _, t := range strings.Split(raw, ",") {
			st := model.SessionType(strings.TrimSpace(t))
			if !st.Valid() {
				writeError(w, http.StatusBadRequest, "unknown session type "+string(st))
				return
			}
			f.Types = append(f.Types, st)
		}
	}

	series, err := h.stats.Series(r.Context(), g, n, f, h.clock())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// TimerAction handles POST /api/v1/timer/{action}
func (h *handler) TimerAction(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "toggle":
		h.sessions.Toggle()
	case "start":
		h.sessions.Start()
	case "pause":
		h.sessions.Pause()
	case "reset":
		h.sessions.Reset()
	case "skip":
		h.sessions.Skip()
	default:
		writeError(w, http.StatusNotFound, "unknown timer action")
		return
	}
	writeJSON(w, http.StatusOK, h.status())
}
