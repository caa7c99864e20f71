// Package display provides terminal output formatting for clipdeck.
package display

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clipdeck/clipdeck/internal/clip"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/playback"
	"github.com/clipdeck/clipdeck/internal/session"
)

const separator = " • "

const maxDescription = 80

// TerminalFormatter formats clips and player state for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatClip formats a single clip for a feed listing.
func (f *TerminalFormatter) FormatClip(c clip.Clip) string {
	var lines []string

	lines = append(lines, c.Title)

	meta := fmt.Sprintf("  %d views", c.Views)
	if !c.CreatedAt.IsZero() {
		meta += separator + f.FormatTimestamp(c.CreatedAt)
	}
	lines = append(lines, meta)

	if c.Description != "" {
		lines = append(lines, "  "+f.TruncateText(c.Description, maxDescription))
	}

	lines = append(lines, "  "+f.formatCounts(len(c.LikedBy), len(c.DislikedBy), c.SavedByCount, c.ShareCount))

	if c.MediaURL != "" {
		lines = append(lines, "  "+c.MediaURL)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *TerminalFormatter) formatCounts(likes, dislikes, saves, shares int) string {
	return strings.Join([]string{
		fmt.Sprintf("%d likes", likes),
		fmt.Sprintf("%d dislikes", dislikes),
		fmt.Sprintf("%d saves", saves),
		fmt.Sprintf("%d shares", shares),
	}, separator)
}

// FormatFeed formats multiple clips for display.
func (f *TerminalFormatter) FormatFeed(clips []clip.Clip) string {
	if len(clips) == 0 {
		return "No clips to display.\n"
	}

	var formatted []string
	for _, c := range clips {
		formatted = append(formatted, f.FormatClip(c))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatView renders the player screen for the current clip.
func (f *TerminalFormatter) FormatView(v session.View) string {
	if !v.HasClip {
		return fmt.Sprintf("No clips in %q.\n", v.Category)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[%d/%d] %s", v.Index+1, v.Total, v.Clip.Title))

	e := v.Engagement
	lines = append(lines, "  "+strings.Join([]string{
		marked(v.Liked(), fmt.Sprintf("%d likes", e.Likes())),
		marked(v.Disliked(), fmt.Sprintf("%d dislikes", e.Dislikes())),
		marked(v.Saved(), fmt.Sprintf("%d saves", e.SavedByCount)),
		fmt.Sprintf("%d shares", e.ShareCount),
	}, separator))

	lines = append(lines, "  "+f.FormatPlayback(v.Playback))

	if v.AtEnd {
		lines = append(lines, "  end of feed")
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatPlayback renders a slot status like "playing 0:12 / 0:30".
func (f *TerminalFormatter) FormatPlayback(st playback.Status) string {
	out := st.State.String()
	if st.Duration > 0 {
		out += fmt.Sprintf(" %s / %s", FormatPosition(st.Position), FormatPosition(st.Duration))
	}
	if st.Degraded {
		out += " (playback unavailable)"
	}
	return out
}

// FormatChange renders the settled outcome of an engagement action.
func (f *TerminalFormatter) FormatChange(c engagement.Change) string {
	if c.Err == nil {
		return fmt.Sprintf("%s confirmed\n", c.Kind)
	}

	var rejected *engagement.ServerRejectedError
	switch {
	case errors.As(c.Err, &rejected):
		return fmt.Sprintf("%s failed: %s\n", c.Kind, rejected.Message)
	case errors.Is(c.Err, engagement.ErrUnauthenticated):
		return fmt.Sprintf("%s failed: sign in with 'clipdeck login'\n", c.Kind)
	default:
		return fmt.Sprintf("%s failed: network error, try again\n", c.Kind)
	}
}

// FormatPosition formats a playback offset as m:ss.
func FormatPosition(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func marked(on bool, s string) string {
	if on {
		return "*" + s
	}
	return s
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
