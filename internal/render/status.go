package render

import "fmt"

// Status is a task's state. The enumeration is closed and unordered: any
// status may transition to any other status.
type Status int

const (
	NotStarted Status = iota
	Started
	Done
	NotDone
)

// Statuses is the fixed enumeration order used for counts and button layouts.
var Statuses = [...]Status{NotStarted, Started, Done, NotDone}

var statusLabels = [...]string{
	NotStarted: "Niet begonnen",
	Started:    "Begonnen",
	Done:       "Done",
	NotDone:    "Niet Done",
}

var statusGlyphs = [...]string{
	NotStarted: "⏸",
	Started:    "▶️",
	Done:       "✅",
	NotDone:    "❌",
}

var statusTokens = [...]string{
	NotStarted: "unstarted",
	Started:    "started",
	Done:       "done",
	NotDone:    "notdone",
}

// Label returns the human-readable status label, which is also the value the
// task API uses on the wire.
func (s Status) Label() string {
	if s < 0 || int(s) >= len(statusLabels) {
		panic(fmt.Sprintf("render: unknown status %d", int(s)))
	}
	return statusLabels[s]
}

// Glyph returns the display glyph for a status. An out-of-range status is a
// programming error; a blank glyph is never rendered.
func (s Status) Glyph() string {
	if s < 0 || int(s) >= len(statusGlyphs) {
		panic(fmt.Sprintf("render: unknown status %d", int(s)))
	}
	return statusGlyphs[s]
}

// Token returns the compact form used in button payloads and status-change
// requests.
func (s Status) Token() string {
	if s < 0 || int(s) >= len(statusTokens) {
		panic(fmt.Sprintf("render: unknown status %d", int(s)))
	}
	return statusTokens[s]
}

// StatusFromAPI maps a wire status value onto the enumeration.
func StatusFromAPI(label string) (Status, error) {
	for _, s := range Statuses {
		if statusLabels[s] == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown task status %q", label)
}

// StatusFromToken maps a button-payload token onto the enumeration.
func StatusFromToken(token string) (Status, error) {
	for _, s := range Statuses {
		if statusTokens[s] == token {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status token %q", token)
}

// mustStatus converts a wire status, panicking on unknown values. Gateway
// responses are validated before they reach the renderer; an unknown status
// here is a bug, not user input.
func mustStatus(label string) Status {
	s, err := StatusFromAPI(label)
	if err != nil {
		panic("render: " + err.Error())
	}
	return s
}
