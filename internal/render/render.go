// Package render turns task data into Telegram-ready HTML messages and
// button layouts. Every function is pure: same inputs, byte-identical
// output. Randomness (the footer example) comes in through a pick function
// so callers own the dice.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/SijmenSchoon/pimpybot/internal/taskcode"
	"github.com/SijmenSchoon/pimpybot/internal/via"
)

// Button is one actionable button: a label and the opaque payload the
// callback dispatch table interprets.
type Button struct {
	Label   string
	Payload string
}

// minuteBaseURL is where the via site serves meeting minutes.
const minuteBaseURL = "http://svia.nl/pimpy/minutes/single/"

var dutchMonths = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// ownerGlyph returns the ownership-size modifier appended after the status
// glyph. Solo tasks get no modifier.
func ownerGlyph(owners int) string {
	switch {
	case owners == 2:
		return " 👨‍👦"
	case owners == 3:
		return " 👨‍👧‍👦"
	case owners >= 4:
		return " 👨‍👩‍👧‍👧"
	default:
		return ""
	}
}

// TaskList renders a task collection as one message. When scoped is false
// the tasks span multiple groups and each group gets its own header; a
// scoped list omits the headers. ownerLabel is empty for the requesting
// user's own list, or another member's display name. pick selects the
// footer example from n tasks; it is only called when n > 0.
func TaskList(tasks []via.Task, scoped bool, ownerLabel string, pick func(n int) int) string {
	label := "Je"
	if ownerLabel != "" {
		label = html.EscapeString(ownerLabel) + "'s"
	}

	var sb strings.Builder
	if scoped {
		fmt.Fprintf(&sb, "<strong>%s taken voor deze groep:</strong>\n\n", label)
	} else {
		fmt.Fprintf(&sb, "<strong>%s taken:</strong>\n\n", label)
	}

	if len(tasks) == 0 {
		sb.WriteString("Geen taken.\n")
		return sb.String()
	}

	if scoped {
		writeTaskSet(&sb, "", tasks)
	} else {
		// Group by owning group, in first-seen order.
		var order []int
		byGroup := make(map[int][]via.Task)
		for _, task := range tasks {
			if _, seen := byGroup[task.Group.ID]; !seen {
				order = append(order, task.Group.ID)
			}
			byGroup[task.Group.ID] = append(byGroup[task.Group.ID], task)
		}
		for _, groupID := range order {
			groupTasks := byGroup[groupID]
			writeTaskSet(&sb, groupTasks[0].Group.Name, groupTasks)
		}
	}

	example := taskcode.Encode(tasks[pick(len(tasks))].ID)
	fmt.Fprintf(&sb, "Gebruik /task &lt;taakcode&gt; voor meer informatie. Bijvoorbeeld: /task %s", example)

	return sb.String()
}

// writeTaskSet renders one group's tasks, with an optional group header.
func writeTaskSet(sb *strings.Builder, groupName string, tasks []via.Task) {
	if groupName != "" {
		fmt.Fprintf(sb, "<strong>%s:</strong>\n", html.EscapeString(groupName))
	}
	for _, task := range tasks {
		code := taskcode.Encode(task.ID)
		glyph := mustStatus(task.Status).Glyph() + ownerGlyph(len(task.Users))
		fmt.Fprintf(sb, "• <code>[%s]</code> %s %s\n",
			code, glyph, html.EscapeString(strings.TrimSpace(task.Title)))
	}
	sb.WriteString("\n")
}

// TaskDetail renders one task in full, plus the status-change buttons. The
// layout is identical whether or not the request was group-scoped; the
// parameter mirrors the command scope for callers that log it.
func TaskDetail(task *via.Task, scoped bool) (string, [][]Button) {
	_ = scoped

	code := taskcode.Encode(task.ID)
	current := mustStatus(task.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<code>[%s]</code> <strong>%s</strong>\n",
		code, html.EscapeString(task.Title))
	fmt.Fprintf(&sb, "<em>%s</em>\n\n", formatTimestamp(task.Timestamp))
	fmt.Fprintf(&sb, "<strong>Groep:</strong> %s\n", html.EscapeString(task.Group.Name))
	fmt.Fprintf(&sb, "<strong>Status:</strong> %s\n", current.Label())

	writeOwners(&sb, task.Users)

	if task.Content != nil {
		fmt.Fprintf(&sb, "<strong>Beschrijving:</strong>\n%s\n\n", html.EscapeString(*task.Content))
	}

	if task.Minute != nil {
		url := fmt.Sprintf("%s%d/", minuteBaseURL, task.Minute.ID)
		if task.Minute.Line != nil {
			url += fmt.Sprintf("%d", *task.Minute.Line)
		}
		fmt.Fprintf(&sb, "<a href=\"%s\">Bijbehorende notulen</a>\n", url)
	} else {
		sb.WriteString("<em>Geen bijbehorende notulen</em>\n")
	}

	return sb.String(), statusButtons(task.ID, current)
}

// writeOwners renders the owner clause, which varies by owner count.
func writeOwners(sb *strings.Builder, owners []via.User) {
	switch len(owners) {
	case 0:
		sb.WriteString("<em>Geen eigenaren</em>\n")
	case 1:
		fmt.Fprintf(sb, "<strong>Eigenaar:</strong> %s\n", html.EscapeString(owners[0].Name))
	case 2:
		fmt.Fprintf(sb, "<strong>Eigenaren:</strong> %s en %s\n",
			html.EscapeString(owners[0].Name), html.EscapeString(owners[1].Name))
	default:
		sb.WriteString("\n<strong>Eigenaren:</strong>\n")
		for _, owner := range owners {
			fmt.Fprintf(sb, "• %s\n", html.EscapeString(owner.Name))
		}
	}
	sb.WriteString("\n")
}

// statusButtons builds one button per status other than the current one, in
// enumeration order with the current slot skipped.
func statusButtons(taskID int, current Status) [][]Button {
	row := make([]Button, 0, len(Statuses)-1)
	for _, s := range Statuses {
		if s == current {
			continue
		}
		row = append(row, Button{
			Label:   s.Glyph() + " " + s.Label(),
			Payload: fmt.Sprintf("status %s %d", s.Token(), taskID),
		})
	}
	return [][]Button{row}
}

// formatTimestamp renders a task timestamp with Dutch month names.
func formatTimestamp(ts via.Timestamp) string {
	t := ts.Time
	return fmt.Sprintf("%02d %s %d, %02d:%02d",
		t.Day(), dutchMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// OwnerSummary renders per-owner status tallies for a whole group, plus one
// button per group member (rows of three) to list that member's tasks.
// Owners are rendered in sorted-name order for deterministic output.
func OwnerSummary(byOwner map[string][]via.Task, members []via.User) (string, [][]Button) {
	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var sb strings.Builder
	for _, owner := range owners {
		var counts [len(Statuses)]int
		for _, task := range byOwner[owner] {
			counts[mustStatus(task.Status)]++
		}

		fmt.Fprintf(&sb, "<b>%s</b>:\n    ", html.EscapeString(owner))
		for i, s := range Statuses {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s %d", s.Glyph(), counts[s])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nKlik op een naam hieronder om zijn/haar taken weer te geven.")

	var buttons [][]Button
	for i, member := range members {
		if i%3 == 0 {
			buttons = append(buttons, nil)
		}
		buttons[len(buttons)-1] = append(buttons[len(buttons)-1], Button{
			Label:   member.Name,
			Payload: fmt.Sprintf("tasks %d %s", member.ID, member.Name),
		})
	}

	return sb.String(), buttons
}
