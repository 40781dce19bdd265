package examsession

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// Defaults mirror the exam page settings.
const (
	DefaultDuration       = 15 * time.Minute
	DefaultMaxWarnings    = 3
	DefaultDebounceWindow = 2 * time.Second
	DefaultMinWidth       = 700
	DefaultMinHeight      = 500
)

// IdentityStore is the handoff storage written by the login step.
type IdentityStore interface {
	Load() (Identity, bool)
	Clear()
}

// QuestionSource fetches the sanitized question set.
type QuestionSource interface {
	Questions(ctx context.Context) ([]model.SanitizedQuestion, error)
}

// Submitter performs the scoring round-trip.
type Submitter interface {
	Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResult, error)
}

// DeviceProbe reports the current viewport.
type DeviceProbe interface {
	Viewport() Viewport
}

// CameraProbe reports whether a camera stream could be opened.
type CameraProbe interface {
	Available() error
}

// Clock is the time source for the warning debounce.
type Clock interface {
	Now() time.Time
}

// Listener receives session events. It is never called with the session lock
// held, so it may call back into the session.
type Listener func(Event)

// Config configures a Session. Numeric zero values take the defaults above;
// boolean switches are used as given, so start from DefaultConfig.
type Config struct {
	Duration            time.Duration
	MaxWarnings         int
	WebcamRequired      bool
	WarnOnDeviceFailure bool
	IncludeWarnings     bool
	DebounceWindow      time.Duration
	MinWidth            int
	MinHeight           int

	Identity  IdentityStore
	Questions QuestionSource
	Submitter Submitter
	Device    DeviceProbe
	Camera    CameraProbe
	Clock     Clock
	Listener  Listener
	Logger    *zerolog.Logger
}

// DefaultConfig returns the stock exam policy without collaborators.
func DefaultConfig() Config {
	return Config{
		Duration:            DefaultDuration,
		MaxWarnings:         DefaultMaxWarnings,
		WarnOnDeviceFailure: true,
		IncludeWarnings:     true,
		DebounceWindow:      DefaultDebounceWindow,
		MinWidth:            DefaultMinWidth,
		MinHeight:           DefaultMinHeight,
	}
}

func (c *Config) applyDefaults() {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.MaxWarnings <= 0 {
		c.MaxWarnings = DefaultMaxWarnings
	}
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = DefaultDebounceWindow
	}
	if c.MinWidth <= 0 {
		c.MinWidth = DefaultMinWidth
	}
	if c.MinHeight <= 0 {
		c.MinHeight = DefaultMinHeight
	}
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	if c.Listener == nil {
		c.Listener = func(Event) {}
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
