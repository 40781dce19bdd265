package examsession

// State is a phase of one exam attempt.
type State int

const (
	StateInitializing State = iota
	StateDeviceCheck
	StateLoading
	StateActive
	StateFinishing
	StateFinished

	// StateAborted means no identity was handed over by the login step.
	StateAborted
	// StateBlocked means the exam could not start. Nothing is submitted.
	StateBlocked
)

var stateNames = [...]string{
	StateInitializing: "initializing",
	StateDeviceCheck:  "device_check",
	StateLoading:      "loading",
	StateActive:       "active",
	StateFinishing:    "finishing",
	StateFinished:     "finished",
	StateAborted:      "aborted",
	StateBlocked:      "blocked",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted || s == StateBlocked
}

// Signal is a suspicion signal observed while the exam is active.
type Signal int

const (
	// SignalVisibilityHidden fires when the exam view is hidden or suspended.
	SignalVisibilityHidden Signal = iota + 1
	// SignalBlur fires when the exam view loses input focus.
	SignalBlur
)

// Description is the warning text recorded for the signal.
func (s Signal) Description() string {
	switch s {
	case SignalVisibilityHidden:
		return "You switched tabs or minimized the window."
	case SignalBlur:
		return "Window lost focus (possible tab switch or app change)."
	default:
		return "Unknown suspicious activity."
	}
}

// FinishReason is the message shown above the score.
type FinishReason string

const (
	ReasonTimeUp     FinishReason = "Time is over. The test has been submitted automatically."
	ReasonViolations FinishReason = "Exam ended because you violated exam rules multiple times."
	ReasonManual     FinishReason = "You submitted the test."
)

// User-visible notices for the non-submitting exits.
const (
	NoticeNoIdentity    = "No exam identity found. Please log in first."
	NoticeDevice        = "Attempted to start exam on mobile/small screen. Please use a laptop/desktop."
	NoticeNoQuestions   = "No questions configured. Please contact admin."
	NoticeLoadFailed    = "Error loading questions. Please try again later."
	NoticeCameraMissing = "Webcam is required for this exam but is not supported on this device."
	NoticeCameraDenied  = "You must allow webcam access to start the exam. Reload the page and allow access."
	NoticeSubmitFailed  = "There was an error submitting your exam. Please contact the administrator."
)
