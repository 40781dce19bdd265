package examsession

import (
	"fmt"
	"strconv"

	"github.com/stemsi/exstem-proctor/internal/model"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventStateChanged EventKind = iota + 1
	EventTick
	EventWarning
	EventNavigated
	EventAnswered
	EventNotice
	EventFinished
)

// Event is delivered to the Listener after each change. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind  EventKind
	State State

	RemainingSeconds int

	WarningCount int
	MaxWarnings  int
	Reason       string

	Index  int
	Total  int
	Letter string

	Notice  string
	Outcome *Outcome
}

// Outcome is the final result of a submitting session.
type Outcome struct {
	Reason FinishReason
	Result *model.SubmitResult
	Err    error
}

// Message renders the text shown on the result screen.
func (o *Outcome) Message() string {
	if o.Err != nil || o.Result == nil {
		return NoticeSubmitFailed
	}
	text := fmt.Sprintf("You answered %d out of %d questions correctly (%s%%).",
		o.Result.Correct, o.Result.Total, strconv.FormatFloat(o.Result.Percentage, 'f', -1, 64))
	if o.Reason != "" {
		text = string(o.Reason) + "\n\n" + text
	}
	return text
}

// WarningMessage renders the notice shown for a counted warning.
func WarningMessage(count, max int, reason string) string {
	return fmt.Sprintf("Warning %d/%d: %s", count, max, reason)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Snapshot is a copy of the session fields at one instant.
type Snapshot struct {
	State            State
	Identity         Identity
	Questions        []model.SanitizedQuestion
	Selected         []string // per question, "" when unanswered
	CurrentIndex     int
	RemainingSeconds int
	WarningCount     int
	MaxWarnings      int
	Warnings         []string
	Notice           string
}

// Current returns the question at CurrentIndex.
func (s Snapshot) Current() (model.SanitizedQuestion, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return model.SanitizedQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}
