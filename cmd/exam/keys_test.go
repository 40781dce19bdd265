package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{"letters", "ab", []Key{{Kind: KeyRune, Rune: 'a'}, {Kind: KeyRune, Rune: 'b'}}},
		{"arrows", "\x1b[C\x1b[D", []Key{{Kind: KeyRight}, {Kind: KeyLeft}}},
		{"focus reports", "\x1b[O\x1b[I", []Key{{Kind: KeyFocusOut}, {Kind: KeyFocusIn}}},
		{"control keys", "\x03\x1a\r", []Key{{Kind: KeyInterrupt}, {Kind: KeySuspend}, {Kind: KeyEnter}}},
		{"lone escape", "\x1b", []Key{{Kind: KeyUnknown}}},
		{"arrow then letter", "\x1b[Cs", []Key{{Kind: KeyRight}, {Kind: KeyRune, Rune: 's'}}},
		{"empty", "", []Key{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeKeys([]byte(tt.in)))
		})
	}
}

func TestIsYes(t *testing.T) {
	assert.True(t, isYes(Key{Kind: KeyRune, Rune: 'y'}))
	assert.True(t, isYes(Key{Kind: KeyRune, Rune: 'Y'}))
	assert.False(t, isYes(Key{Kind: KeyRune, Rune: 'n'}))
	assert.False(t, isYes(Key{Kind: KeyEnter}))
}
