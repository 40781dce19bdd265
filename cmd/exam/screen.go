package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/stemsi/exstem-proctor/internal/examsession"
	"github.com/stemsi/exstem-proctor/internal/model"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	bold        = "\x1b[1m"
	reverse     = "\x1b[7m"
	red         = "\x1b[31m"
	reset       = "\x1b[0m"
)

const helpLine = "[a-d] answer   [n/→] next   [p/←] previous   [s] submit"

// screen redraws the exam view. Raw mode needs explicit carriage returns.
type screen struct {
	mu         sync.Mutex
	out        io.Writer
	banner     string
	confirming bool
	stopped    bool
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

func (s *screen) setBanner(text string) {
	s.mu.Lock()
	s.banner = text
	s.mu.Unlock()
}

func (s *screen) setConfirming(on bool) {
	s.mu.Lock()
	s.confirming = on
	s.mu.Unlock()
}

// stop blocks until any draw in progress is done and disables later ones.
func (s *screen) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// draw renders snap together with the current banner.
func (s *screen) draw(snap examsession.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	renderExam(&b, snap, s.banner, s.confirming)
	_, _ = io.WriteString(s.out, strings.ReplaceAll(b.String(), "\n", "\r\n"))
}

// renderExam writes one frame. Only Active sessions show a question.
func renderExam(w io.Writer, snap examsession.Snapshot, banner string, confirming bool) {
	switch snap.State {
	case examsession.StateActive:
	case examsession.StateInitializing, examsession.StateDeviceCheck, examsession.StateLoading:
		fmt.Fprintln(w, "Loading exam...")
		return
	case examsession.StateFinishing:
		fmt.Fprintln(w, "Submitting...")
		return
	default:
		fmt.Fprintln(w, snap.Notice)
		return
	}

	fmt.Fprintf(w, "%s%s%s  <%s>   Time left: %s   Warnings: %d/%d\n\n",
		bold, snap.Identity.UserName, reset, snap.Identity.Email,
		examsession.FormatClock(snap.RemainingSeconds), snap.WarningCount, snap.MaxWarnings)

	if banner != "" {
		fmt.Fprintf(w, "%s%s%s\n\n", red, banner, reset)
	}

	q, ok := snap.Current()
	if !ok {
		return
	}
	fmt.Fprintf(w, "Question %d of %d\n\n", snap.CurrentIndex+1, len(snap.Questions))
	fmt.Fprintf(w, "%s%s%s\n\n", bold, q.Question, reset)

	selected := ""
	if snap.CurrentIndex < len(snap.Selected) {
		selected = snap.Selected[snap.CurrentIndex]
	}
	for i, opt := range q.Options {
		if i >= len(model.OptionLetters) {
			break
		}
		letter := model.OptionLetters[i]
		if letter == selected {
			fmt.Fprintf(w, "  %s(%s) %s%s\n", reverse, letter, opt, reset)
			continue
		}
		fmt.Fprintf(w, "  (%s) %s\n", letter, opt)
	}

	fmt.Fprintf(w, "\nAnswered %d of %d\n", answeredCount(snap.Selected), len(snap.Questions))
	if confirming {
		fmt.Fprintln(w, "\nAre you sure you want to submit? [y/N]")
		return
	}
	fmt.Fprintln(w, "\n"+helpLine)
}

// renderResult writes the final screen shown after the terminal is restored.
func renderResult(w io.Writer, snap examsession.Snapshot, out *examsession.Outcome) {
	if out == nil {
		fmt.Fprintln(w, snap.Notice)
		return
	}
	fmt.Fprintln(w, out.Message())
	if out.Result == nil || len(out.Result.Answers) == 0 {
		return
	}

	fmt.Fprintln(w, "\nReview:")
	for i, a := range out.Result.Answers {
		mark := "✗"
		if a.IsCorrect {
			mark = "✓"
		}
		chosen := "-"
		if a.SelectedOption != nil {
			chosen = *a.SelectedOption
		}
		fmt.Fprintf(w, "%2d. %s %s (yours: %s, correct: %s)\n", i+1, mark, a.Question, chosen, a.CorrectOption)
	}
}

func answeredCount(selected []string) int {
	n := 0
	for _, l := range selected {
		if l != "" {
			n++
		}
	}
	return n
}
