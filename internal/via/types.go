package via

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the wire format the via site uses for task timestamps.
const timestampLayout = "2006-01-02T15:04:05"

// Timestamp wraps time.Time to parse the via API's second-resolution layout.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses a quoted via timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("task timestamp is required")
	}
	parsed, err := time.Parse(timestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid task timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// User is a task owner or group member.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Group is the organizational group that owns a task.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Minute references the meeting minutes a task originated from.
// Line is absent when the task is not tied to a specific line.
type Minute struct {
	ID   int  `json:"id"`
	Line *int `json:"line,omitempty"`
}

// Task is a remote-owned task record. Content and Minute are genuinely
// optional; every other field is required and its absence is a transport
// fault, never a default.
type Task struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content,omitempty"`
	Status    string    `json:"status"`
	Users     []User    `json:"users"`
	Group     Group     `json:"group"`
	Timestamp Timestamp `json:"timestamp"`
	Minute    *Minute   `json:"minute,omitempty"`
}

// validate checks the required task fields after decoding.
func (t *Task) validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("task is missing a valid id")
	}
	if t.Title == "" {
		return fmt.Errorf("task %d is missing a title", t.ID)
	}
	if t.Status == "" {
		return fmt.Errorf("task %d is missing a status", t.ID)
	}
	if t.Group.ID <= 0 || t.Group.Name == "" {
		return fmt.Errorf("task %d is missing its group", t.ID)
	}
	return nil
}

func validateTasks(tasks []Task) error {
	for i := range tasks {
		if err := tasks[i].validate(); err != nil {
			return err
		}
	}
	return nil
}
