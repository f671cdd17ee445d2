package model

import "time"

// Task represents a single item in the study to-do list.
type Task struct {
	ID                 string    `json:"id" yaml:"id"`
	Title              string    `json:"title" yaml:"title"`
	Completed          bool      `json:"completed" yaml:"completed"`
	EstimatedPomodoros int       `json:"estimatedPomodoros" yaml:"estimatedPomodoros"`
	CompletedPomodoros int       `json:"completedPomodoros" yaml:"completedPomodoros"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
}

// Remaining returns how many estimated pomodoros are still open.
func (t Task) Remaining() int {
	if left := t.EstimatedPomodoros - t.CompletedPomodoros; left > 0 {
		return left
	}
	return 0
}
