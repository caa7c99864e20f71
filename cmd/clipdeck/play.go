package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/clipdeck/clipdeck/internal/display"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/gesture"
	"github.com/clipdeck/clipdeck/internal/playback"
	"github.com/clipdeck/clipdeck/internal/session"
	"github.com/clipdeck/clipdeck/pkg/browser"
)

// syncWriter serializes the prompt loop and the engagement notifications.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// player drives a session from line commands.
type player struct {
	session    *session.Session
	out        io.Writer
	format     *display.TerminalFormatter
	openShares bool
	open       func(url string) error
}

func newPlayer(api session.API, user session.User, out io.Writer, opts ...session.Option) *player {
	p := &player{
		out:    &syncWriter{w: out},
		format: display.NewTerminalFormatter(),
		open:   browser.Open,
	}
	opts = append(opts, session.WithObserver(p.notify))
	p.session = session.New(api, user, opts...)
	return p
}

// notify runs on the confirmation goroutine once an engagement action settles.
func (p *player) notify(c engagement.Change) {
	fmt.Fprint(p.out, p.format.FormatChange(c))

	if c.Err != nil || c.Kind != engagement.KindShare || !p.openShares {
		return
	}
	for _, cl := range p.session.Clips() {
		if cl.ID == c.ClipID && cl.MediaURL != "" {
			if err := p.open(cl.MediaURL); err != nil {
				fmt.Fprintf(p.out, "could not open browser, share this link:\n%s\n", cl.MediaURL)
			}
			return
		}
	}
}

// run reads commands until quit or end of input.
func (p *player) run(ctx context.Context, in io.Reader) error {
	fmt.Fprint(p.out, p.format.FormatView(p.session.State()))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "q" {
			return nil
		}

		if err := p.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(p.out, "%s\n", describe(err))
			continue
		}
		fmt.Fprint(p.out, p.format.FormatView(p.session.State()))
	}
	return scanner.Err()
}

func (p *player) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "next", "n":
		return p.session.Next()
	case "prev", "p":
		return p.session.Previous()
	case "tap":
		if len(args) != 1 {
			return errors.New("usage: tap left|center|right")
		}
		zone, err := gesture.ParseZone(args[0])
		if err != nil {
			return err
		}
		return p.session.Tap(zone)
	case "tap-at":
		if len(args) != 2 {
			return errors.New("usage: tap-at <x> <width>")
		}
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid x %q", args[0])
		}
		width, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid width %q", args[1])
		}
		return p.session.TapAt(x, width)
	case "like":
		_, err := p.session.Like(ctx)
		return err
	case "dislike":
		_, err := p.session.Dislike(ctx)
		return err
	case "save":
		_, err := p.session.Save(ctx)
		return err
	case "share":
		_, err := p.session.Share(ctx)
		return err
	case "status":
		return nil
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// describe turns an action error into a one-line message for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, engagement.ErrUnauthenticated):
		return "sign in first: clipdeck login --token <token>"
	case errors.Is(err, engagement.ErrOperationInProgress):
		return "still waiting for the previous request"
	case errors.Is(err, playback.ErrPlaybackDegraded):
		return "playback unavailable for this clip"
	case errors.Is(err, session.ErrEmptyFeed):
		return "no clips loaded"
	default:
		return err.Error()
	}
}
