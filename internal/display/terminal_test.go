package display

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/clipdeck/clipdeck/internal/clip"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/playback"
	"github.com/clipdeck/clipdeck/internal/session"
)

func TestAC300_TerminalFeed_ShowsClipTitle(t *testing.T) {
	c := clip.Clip{ID: "c1", Title: "Sunset timelapse", CreatedAt: time.Now()}

	output := NewTerminalFormatter().FormatClip(c)

	if !strings.Contains(output, "Sunset timelapse") {
		t.Error("user should see clip title in terminal output")
	}
}

func TestAC300_TerminalFeed_ShowsCounts(t *testing.T) {
	c := clip.Clip{
		Title:        "Test Clip",
		Views:        42,
		LikedBy:      []string{"u1", "u2"},
		DislikedBy:   []string{"u3"},
		SavedByCount: 5,
		ShareCount:   7,
	}

	output := NewTerminalFormatter().FormatClip(c)

	for _, want := range []string{"42 views", "2 likes", "1 dislikes", "5 saves", "7 shares"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in terminal output, got:\n%s", want, output)
		}
	}
}

func TestAC301_TerminalFeed_ShowsRelativeTimestamps(t *testing.T) {
	formatter := NewTerminalFormatter()
	testCases := []struct {
		name      string
		timestamp time.Time
		contains  string
	}{
		{"recent minutes", time.Now().Add(-30 * time.Minute), "min"},
		{"recent hours", time.Now().Add(-3 * time.Hour), "hour"},
		{"recent days", time.Now().Add(-48 * time.Hour), "day"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := formatter.FormatTimestamp(tc.timestamp)
			if !strings.Contains(strings.ToLower(output), tc.contains) {
				t.Errorf("user should see relative time (%s) for %s content", tc.contains, tc.name)
			}
		})
	}
}

func TestAC302_TerminalFeed_ShowsMediaURL(t *testing.T) {
	c := clip.Clip{Title: "Test Clip", MediaURL: "https://cdn.example.com/c1.mp4"}

	output := NewTerminalFormatter().FormatClip(c)

	if !strings.Contains(output, "https://cdn.example.com/c1.mp4") {
		t.Error("user should see the media URL in terminal output")
	}
}

func TestAC303_TerminalFeed_TruncatesLongText(t *testing.T) {
	formatter := NewTerminalFormatter()
	longText := "This is a very long text that should be truncated because it exceeds the maximum length"

	truncated := formatter.TruncateText(longText, 20)

	if len(truncated) > 20 {
		t.Errorf("user should see truncated text (max 20 chars), got %d chars", len(truncated))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Error("user should see ellipsis indicating text was truncated")
	}
}

func TestAC303_TerminalFeed_PreservesShortText(t *testing.T) {
	output := NewTerminalFormatter().TruncateText("Short", 20)

	if output != "Short" {
		t.Errorf("user should see full text when under limit, got: %s", output)
	}
}

func TestAC303_TerminalFeed_TruncatesOnRuneBoundary(t *testing.T) {
	output := NewTerminalFormatter().TruncateText("héllo wörld ünïcode", 8)

	if output != "héllo..." {
		t.Errorf("user should see whole characters when truncated, got: %q", output)
	}
}

func TestAC304_TerminalFeed_ShowsMultipleClips(t *testing.T) {
	clips := []clip.Clip{
		{ID: "1", Title: "First Clip"},
		{ID: "2", Title: "Second Clip"},
	}

	output := NewTerminalFormatter().FormatFeed(clips)

	if !strings.Contains(output, "First Clip") || !strings.Contains(output, "Second Clip") {
		t.Errorf("user should see every clip in the feed, got:\n%s", output)
	}
}

func TestAC305_TerminalFeed_ShowsEmptyFeedMessage(t *testing.T) {
	output := NewTerminalFormatter().FormatFeed(nil)

	if !strings.Contains(strings.ToLower(output), "no") {
		t.Error("user should see message indicating no content available")
	}
}

func TestAC306_PlayerView_ShowsPositionAndMarks(t *testing.T) {
	v := session.View{
		UserID:  "u1",
		Index:   1,
		Total:   3,
		HasClip: true,
		Clip:    clip.Clip{ID: "c2", Title: "Second"},
		Engagement: engagement.Engagement{
			ClipID:       "c2",
			LikedBy:      []string{"u1", "u2"},
			SavedBy:      []string{"u1"},
			SavedByCount: 1,
		},
		Playback: playback.Status{
			State:    playback.Playing,
			Position: 12 * time.Second,
			Duration: 30 * time.Second,
		},
	}

	output := NewTerminalFormatter().FormatView(v)

	for _, want := range []string{"[2/3] Second", "*2 likes", "0 dislikes", "*1 saves", "playing 0:12 / 0:30"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q on the player screen, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "*0 dislikes") {
		t.Error("user should not see a dislike mark they did not set")
	}
}

func TestAC306_PlayerView_ShowsDegradedPlayback(t *testing.T) {
	v := session.View{
		HasClip:  true,
		Total:    1,
		AtEnd:    true,
		Clip:     clip.Clip{Title: "Only"},
		Playback: playback.Status{State: playback.Idle, Degraded: true},
	}

	output := NewTerminalFormatter().FormatView(v)

	if !strings.Contains(output, "unavailable") {
		t.Errorf("user should see that playback failed, got:\n%s", output)
	}
	if !strings.Contains(output, "end of feed") {
		t.Errorf("user should see the end of the feed, got:\n%s", output)
	}
}

func TestAC306_PlayerView_EmptyFeed(t *testing.T) {
	output := NewTerminalFormatter().FormatView(session.View{Category: "shorts"})

	if !strings.Contains(output, "No clips") {
		t.Errorf("user should see an empty feed message, got:\n%s", output)
	}
}

func TestAC307_Notifications_DescribeOutcome(t *testing.T) {
	formatter := NewTerminalFormatter()
	testCases := []struct {
		name     string
		change   engagement.Change
		contains string
	}{
		{"confirmed", engagement.Change{Kind: engagement.KindLike}, "like confirmed"},
		{"rejected", engagement.Change{Kind: engagement.KindSave, Err: &engagement.ServerRejectedError{StatusCode: 500, Message: "database unavailable"}}, "database unavailable"},
		{"unauthenticated", engagement.Change{Kind: engagement.KindShare, Err: fmt.Errorf("%w: token expired", engagement.ErrUnauthenticated)}, "clipdeck login"},
		{"network", engagement.Change{Kind: engagement.KindDislike, Err: engagement.ErrNetworkFailure}, "network"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := formatter.FormatChange(tc.change)
			if !strings.Contains(output, tc.contains) {
				t.Errorf("user should see %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestFormatPosition(t *testing.T) {
	if got := FormatPosition(75 * time.Second); got != "1:15" {
		t.Errorf("expected 1:15, got %s", got)
	}
	if got := FormatPosition(-time.Second); got != "0:00" {
		t.Errorf("expected 0:00 for negative offsets, got %s", got)
	}
}
