package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/stemsi/exstem-proctor/internal/examsession"
	"golang.org/x/term"
)

const (
	enterAltScreen   = "\x1b[?1049h\x1b[?25l"
	leaveAltScreen   = "\x1b[?25h\x1b[?1049l"
	enableFocusRpt   = "\x1b[?1004h"
	disableFocusRpt  = "\x1b[?1004l"
	defaultMinCols   = 80
	defaultMinRows   = 24
	cameraDeviceGlob = "/dev/video*"
)

// terminal owns raw mode on stdin and the alternate screen on stdout.
type terminal struct {
	in    *os.File
	out   *os.File
	state *term.State
}

func openTerminal() (*terminal, error) {
	in, out := os.Stdin, os.Stdout
	if !term.IsTerminal(int(in.Fd())) {
		return nil, errors.New("stdin is not a terminal")
	}
	t := &terminal{in: in, out: out}
	if err := t.makeRaw(); err != nil {
		return nil, err
	}
	fmt.Fprint(out, enterAltScreen+enableFocusRpt)
	return t, nil
}

// makeRaw (re)enters raw mode. It is also used after SIGCONT, since a stopped
// process may come back with the shell's cooked settings.
func (t *terminal) makeRaw() error {
	st, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	if t.state == nil {
		t.state = st
	}
	return nil
}

func (t *terminal) restore() {
	fmt.Fprint(t.out, disableFocusRpt+leaveAltScreen)
	if t.state != nil {
		_ = term.Restore(int(t.in.Fd()), t.state)
	}
}

// Viewport implements examsession.DeviceProbe in character cells.
func (t *terminal) Viewport() examsession.Viewport {
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		cols, rows = 0, 0
	}
	return examsession.Viewport{Width: cols, Height: rows, UserAgent: userAgent()}
}

// userAgent describes the platform in the form the device check expects.
func userAgent() string {
	platform := runtime.GOOS
	switch platform {
	case "android":
		platform = "Android"
	case "ios":
		platform = "iPhone"
	}
	return fmt.Sprintf("exstem-exam (%s; %s) %s", platform, runtime.GOARCH, os.Getenv("TERM_PROGRAM"))
}

// videoDevices reports whether a capture device node exists.
type videoDevices struct {
	glob string
}

func (v videoDevices) Available() error {
	matches, err := filepath.Glob(v.glob)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return errors.New("no video capture device found")
	}
	return nil
}
