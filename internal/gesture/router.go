// Package gesture routes taps on the active clip's viewport to transport actions.
package gesture

import (
	"fmt"
	"strings"
	"time"
)

// SeekStep is how far a side tap seeks.
const SeekStep = 10 * time.Second

// Zone is a horizontal third of the viewport.
type Zone int

const (
	Left Zone = iota
	Center
	Right
)

func (z Zone) String() string {
	switch z {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// ParseZone accepts "left", "center" (or "middle") and "right".
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "center", "centre", "middle", "c", "m":
		return Center, nil
	case "right", "r":
		return Right, nil
	default:
		return 0, fmt.Errorf("invalid zone %q: must be left, center or right", s)
	}
}

// ZoneAt maps x within a viewport of the given width to a zone. Positions
// outside the viewport are clamped to the nearest edge.
func ZoneAt(x, width float64) Zone {
	if width <= 0 || x < width/3 {
		return Left
	}
	if x < 2*width/3 {
		return Center
	}
	return Right
}

// Transport is the subset of the playback controller the router drives.
type Transport interface {
	TogglePlayback(clipID string) error
	Seek(clipID string, delta time.Duration) error
}

// Router is stateless; each Route call issues exactly one transport call.
type Router struct {
	transport Transport
}

// NewRouter creates a router over t.
func NewRouter(t Transport) *Router {
	return &Router{transport: t}
}

// Route performs the zone's action on clipID.
func (r *Router) Route(zone Zone, clipID string) error {
	switch zone {
	case Left:
		return r.transport.Seek(clipID, -SeekStep)
	case Center:
		return r.transport.TogglePlayback(clipID)
	case Right:
		return r.transport.Seek(clipID, SeekStep)
	default:
		return fmt.Errorf("unknown zone %v", zone)
	}
}
