// Command exam is the terminal front end for exam-takers.
//
//	exam login -name "Ana Lima" -email ana@example.com
//	exam take  [-server URL]
//	exam logout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/client"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/examsession"
	"github.com/stemsi/exstem-proctor/internal/logger"
	"github.com/stemsi/exstem-proctor/internal/validator"
)

func main() {
	cfg := config.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(os.Args[2:])
	case "take":
		err = runTake(cfg, os.Args[2:])
	case "logout":
		err = runLogout(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exam <login|take|logout> [flags]")
}

// ─── login / logout ─────────────────────────────────────────────────────────

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	name := fs.String("name", "", "your full name")
	email := fs.String("email", "", "your email address")
	identityPath := fs.String("identity", examsession.DefaultIdentityPath(), "identity handoff file")
	_ = fs.Parse(args)

	id := examsession.Identity{
		UserName: strings.TrimSpace(*name),
		Email:    strings.TrimSpace(*email),
	}
	if !id.Complete() {
		return errors.New("please enter both name and email")
	}
	if !validator.IsEmail(id.Email) {
		return fmt.Errorf("%q is not a valid email address", id.Email)
	}

	if err := (examsession.FileIdentityStore{Path: *identityPath}).Save(id); err != nil {
		return err
	}
	fmt.Printf("Welcome, %s. Run `exam take` to start the exam.\n", id.UserName)
	return nil
}

func runLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	identityPath := fs.String("identity", examsession.DefaultIdentityPath(), "identity handoff file")
	_ = fs.Parse(args)

	examsession.FileIdentityStore{Path: *identityPath}.Clear()
	fmt.Println("Signed out.")
	return nil
}

// ─── take ───────────────────────────────────────────────────────────────────

func runTake(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("take", flag.ExitOnError)
	server := fs.String("server", cfg.ExamServerURL, "exam server base URL")
	identityPath := fs.String("identity", examsession.DefaultIdentityPath(), "identity handoff file")
	logPath := fs.String("log", filepath.Join(filepath.Dir(examsession.DefaultIdentityPath()), "exam.log"), "log file")
	minCols := fs.Int("min-cols", defaultMinCols, "smallest terminal width allowed")
	minRows := fs.Int("min-rows", defaultMinRows, "smallest terminal height allowed")
	_ = fs.Parse(args)

	log, closeLog, err := openLog(*logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	store := examsession.FileIdentityStore{Path: *identityPath}
	api := client.New(*server, log)

	sessCfg := examsession.DefaultConfig()
	sessCfg.MinWidth = *minCols
	sessCfg.MinHeight = *minRows
	sessCfg.Identity = store
	sessCfg.Questions = api
	sessCfg.Submitter = api
	sessCfg.Camera = videoDevices{glob: cameraDeviceGlob}
	sessCfg.Logger = &log

	var reporter *warningReporter
	if id, ok := store.Load(); ok {
		applyServerSettings(ctx, api, &sessCfg, log)

		proctor, err := api.DialProctor(ctx, id.UserName, id.Email)
		if err != nil {
			log.Warn().Err(err).Msg("Live proctoring unavailable")
		} else {
			reporter = newWarningReporter(proctor, log)
			defer reporter.Close()
		}
	}

	t, err := openTerminal()
	if err != nil {
		return err
	}
	scr := newScreen(t.out)
	var restoreOnce sync.Once
	restore := func() {
		restoreOnce.Do(func() {
			scr.stop()
			t.restore()
		})
	}
	defer restore()

	sessCfg.Device = t

	var sess *examsession.Session
	sessCfg.Listener = func(ev examsession.Event) {
		switch ev.Kind {
		case examsession.EventWarning:
			scr.setBanner(examsession.WarningMessage(ev.WarningCount, ev.MaxWarnings, ev.Reason))
			reporter.Report(ev.Reason, ev.WarningCount)
		case examsession.EventNotice:
			scr.setBanner(ev.Notice)
		case examsession.EventNavigated:
			scr.setBanner("")
		}
		scr.draw(sess.Snapshot())
	}

	sess, err = examsession.New(sessCfg)
	if err != nil {
		return err
	}

	keys := make(chan Key, 16)
	go readKeys(t.in, keys)

	if st, err := sess.Start(ctx); err != nil {
		return err
	} else if st == examsession.StateActive {
		ticker := time.NewTicker(time.Second)
		go func() { _ = sess.Run(ctx, ticker.C) }()
		driveExam(ctx, sess, t, scr, keys)
		ticker.Stop()
	}

	restore()
	renderResult(os.Stdout, sess.Snapshot(), sess.Outcome())
	return nil
}

// applyServerSettings copies the server's exam policy into cfg. On failure
// the defaults stay; loading the questions will report the outage.
func applyServerSettings(ctx context.Context, api *client.Client, cfg *examsession.Config, log zerolog.Logger) {
	exam, err := api.FetchExam(ctx)
	if err != nil || exam.Exam == nil {
		log.Warn().Err(err).Msg("Exam settings unavailable, using defaults")
		return
	}
	if exam.Exam.DurationSeconds > 0 {
		cfg.Duration = time.Duration(exam.Exam.DurationSeconds) * time.Second
	}
	if exam.Exam.MaxWarnings > 0 {
		cfg.MaxWarnings = exam.Exam.MaxWarnings
	}
	cfg.WebcamRequired = exam.Exam.WebcamRequired
}

// driveExam dispatches input until the session ends or ctx is cancelled.
func driveExam(ctx context.Context, sess *examsession.Session, t *terminal, scr *screen, keys <-chan Key) {
	sigs := make(chan os.Signal, 1)
	notifyTerminalSignals(sigs)
	defer signal.Stop(sigs)

	confirm := func() bool {
		scr.setConfirming(true)
		scr.draw(sess.Snapshot())
		defer func() {
			scr.setConfirming(false)
			scr.draw(sess.Snapshot())
		}()
		for {
			select {
			case <-ctx.Done():
				return false
			case <-sess.Done():
				return false
			case k, ok := <-keys:
				if !ok {
					return false
				}
				switch k.Kind {
				case KeyFocusIn:
					continue
				case KeyFocusOut:
					sess.Signal(ctx, examsession.SignalBlur)
					return false
				}
				return isYes(k)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.Done():
			return
		case sig := <-sigs:
			if isResume(sig) {
				_ = t.makeRaw()
				fmt.Fprint(t.out, enableFocusRpt)
				sess.Signal(ctx, examsession.SignalVisibilityHidden)
			}
			scr.draw(sess.Snapshot())
		case k, ok := <-keys:
			if !ok {
				return
			}
			handleKey(ctx, sess, k, confirm)
		}
	}
}

func handleKey(ctx context.Context, sess *examsession.Session, k Key, confirm func() bool) {
	switch k.Kind {
	case KeyRight, KeyDown:
		sess.Next()
	case KeyLeft, KeyUp:
		sess.Prev()
	case KeySuspend:
		sess.Signal(ctx, examsession.SignalVisibilityHidden)
	case KeyFocusOut:
		sess.Signal(ctx, examsession.SignalBlur)
	case KeyInterrupt:
		sess.RequestSubmit(ctx, confirm)
	case KeyRune:
		switch k.Rune {
		case 'n', 'N':
			sess.Next()
		case 'p', 'P':
			sess.Prev()
		case 's', 'S':
			sess.RequestSubmit(ctx, confirm)
		case 'a', 'b', 'c', 'd', 'A', 'B', 'C', 'D':
			_ = sess.Select(string(k.Rune))
		}
	}
}

func readKeys(r io.Reader, out chan<- Key) {
	defer close(out)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, k := range decodeKeys(buf[:n]) {
			out <- k
		}
		if err != nil {
			return
		}
	}
}

func openLog(path, level string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	log := logger.New(f, level, "json").With().Str("app", "exam").Logger()
	return log, func() { _ = f.Close() }, nil
}
