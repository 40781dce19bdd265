//go:build !unix

package main

import "os"

func notifyTerminalSignals(chan<- os.Signal) {}

func isResume(os.Signal) bool { return false }
