// Package browser opens shared clip links in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher starts an external program without waiting for it.
type Launcher func(name string, args ...string) error

func startProcess(name string, args ...string) error {
	return exec.Command(name, args...).Start() // #nosec G204 -- arguments come from command() after URL validation
}

// Opener opens validated http(s) links with the platform's handler.
type Opener struct {
	goos   string
	launch Launcher
}

// NewOpener returns an opener for goos that starts programs with launch.
func NewOpener(goos string, launch Launcher) *Opener {
	return &Opener{goos: goos, launch: launch}
}

var defaultOpener = NewOpener(runtime.GOOS, startProcess)

// Open opens link in the default browser.
func Open(link string) error {
	return defaultOpener.Open(link)
}

// Open validates link and hands it to the platform's URL handler.
func (o *Opener) Open(link string) error {
	if err := validate(link); err != nil {
		return err
	}

	name, args, err := command(o.goos, link)
	if err != nil {
		return err
	}
	return o.launch(name, args...)
}

// validate only lets absolute http and https links through to the shell handler.
func validate(link string) error {
	parsed, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host in %q", link)
	}
	return nil
}

func command(goos, link string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{link}, nil
	case "darwin":
		return "open", []string{link}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
