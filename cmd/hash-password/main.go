// Command hash-password prints a bcrypt hash for ADMIN_PASSWORD_HASH.
package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/logger"
	"github.com/stemsi/exstem-proctor/internal/service"
	"golang.org/x/term"
)

const minPasswordLength = 6

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr so stdout carries only the hash.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// ─── CLI Input ─────────────────────────────────────────────────────
	fmt.Fprintln(os.Stderr, "=== Create Admin Password Hash ===")

	password, err := readPassword("Enter Password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	if len(password) < minPasswordLength {
		fmt.Fprintf(os.Stderr, "Error: Password must be at least %d characters\n", minPasswordLength)
		os.Exit(1)
	}

	confirm, err := readPassword("Confirm Password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	if !bytes.Equal(password, confirm) {
		fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := service.HashPassword(string(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	fmt.Fprintln(os.Stderr, "\nSet this in the server environment:")
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	return term.ReadPassword(int(syscall.Stdin))
}
