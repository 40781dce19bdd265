package examsession

import "regexp"

// Viewport is what the device check inspects.
type Viewport struct {
	Width     int
	Height    int
	UserAgent string
}

var mobileAgent = regexp.MustCompile(`(?i)Mobi|Android|iPhone|iPad|iPod`)

// DeviceAllowed applies the mobile/small-screen heuristic.
func DeviceAllowed(v Viewport, minWidth, minHeight int) bool {
	if mobileAgent.MatchString(v.UserAgent) {
		return false
	}
	return v.Width >= minWidth && v.Height >= minHeight
}
