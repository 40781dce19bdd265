//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyTerminalSignals subscribes to resize and resume-after-stop.
func notifyTerminalSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGWINCH, syscall.SIGCONT)
}

func isResume(sig os.Signal) bool { return sig == syscall.SIGCONT }
