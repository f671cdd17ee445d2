package service

import (
	"context"
	"time"

	"pomotaro/internal/repository"
	"pomotaro/internal/stats"
)

// StatsService answers statistics queries over the stored history.
type StatsService struct {
	history *repository.HistoryRepository
	loc     *time.Location
}

func NewStatsService(history *repository.HistoryRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{history: history, loc: loc}
}

// Location is the time zone buckets are computed in.
func (s *StatsService) Location() *time.Location { return s.loc }

func (s *StatsService) Summary(ctx context.Context, now time.Time) (stats.Summary, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(records, now, s.loc), nil
}

// Series returns the last n periods of granularity g up to now, oldest first.
func (s *StatsService) Series(ctx context.Context, g stats.Granularity, n int, f stats.Filter, now time.Time) ([]stats.Bucket, error) {
	if n < 1 {
		n = 1
	}
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	last := stats.Start(now.In(s.loc), g)
	first := last
	for i := 1; i < n; i++ {
		first = previous(first, g)
	}
	return stats.Series(records, g, s.loc, f, first, last), nil
}

func previous(start time.Time, g stats.Granularity) time.Time {
	switch g {
	case stats.Week:
		return start.AddDate(0, 0, -7)
	case stats.Month:
		return start.AddDate(0, -1, 0)
	case stats.Year:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, 0, -1)
	}
}

func (s *StatsService) Aggregate(ctx context.Context, g stats.Granularity, f stats.Filter) ([]stats.Bucket, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(records, g, s.loc, f), nil
}

func (s *StatsService) ByCategory(ctx context.Context, f stats.Filter) ([]stats.CategoryTotal, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByCategory(records, f), nil
}

func (s *StatsService) ByTask(ctx context.Context, f stats.Filter) ([]stats.TaskTotal, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByTask(records, f), nil
}

func (s *StatsService) Calendar(ctx context.Context, year int, month time.Month) ([][]stats.CalendarDay, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	return stats.MonthGrid(records, year, month, s.loc), nil
}

func (s *StatsService) Achievements(ctx context.Context) ([]stats.Achievement, error) {
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	total, _ := stats.Total(records, stats.FocusOnly())
	return stats.Achievements(total), nil
}
