package stats

// Achievement is a milestone of accumulated focus time.
type Achievement struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Subtitle  string `json:"subtitle"`
	Threshold int    `json:"threshold"` // seconds
	Unlocked  bool   `json:"unlocked"`
}

var milestones = []Achievement{
	{ID: 1, Name: "First Tomato", Subtitle: "Finish your first focus session", Threshold: 1},
	{ID: 2, Name: "Warming Up", Subtitle: "Study for 5h 20min in total", Threshold: 5*3600 + 20*60},
	{ID: 3, Name: "Full Day", Subtitle: "Study for 24h in total", Threshold: 24 * 3600},
	{ID: 4, Name: "Island of Focus", Subtitle: "Study for 36h in total", Threshold: 36 * 3600},
	{ID: 5, Name: "Centurion", Subtitle: "Study for 100h in total", Threshold: 100 * 3600},
}

// Achievements returns every milestone with its unlocked flag set from the
// total focus seconds.
func Achievements(totalSeconds int) []Achievement {
	out := make([]Achievement, len(milestones))
	for i, a := range milestones {
		a.Unlocked = totalSeconds >= a.Threshold
		out[i] = a
	}
	return out
}

// NextAchievement returns the first locked milestone and the seconds still
// missing; ok is false once everything is unlocked.
func NextAchievement(totalSeconds int) (a Achievement, missing int, ok bool) {
	for _, m := range milestones {
		if totalSeconds < m.Threshold {
			return m, m.Threshold - totalSeconds, true
		}
	}
	return Achievement{}, 0, false
}
