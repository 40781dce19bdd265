package main

// KeyKind classifies one decoded keypress or terminal report.
type KeyKind int

const (
	KeyRune KeyKind = iota + 1
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyInterrupt // Ctrl-C
	KeySuspend   // Ctrl-Z
	KeyFocusIn   // ESC [ I
	KeyFocusOut  // ESC [ O
	KeyUnknown
)

// Key is one decoded input.
type Key struct {
	Kind KeyKind
	Rune byte
}

// decodeKeys splits a raw-mode read into keys. Escape sequences are assumed
// to arrive whole within one read.
func decodeKeys(buf []byte) []Key {
	keys := make([]Key, 0, len(buf))
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b == 0x1b:
			if i+2 < len(buf) && buf[i+1] == '[' {
				keys = append(keys, csiKey(buf[i+2]))
				i += 2
				continue
			}
			keys = append(keys, Key{Kind: KeyUnknown})
		case b == 0x03:
			keys = append(keys, Key{Kind: KeyInterrupt})
		case b == 0x1a:
			keys = append(keys, Key{Kind: KeySuspend})
		case b == '\r' || b == '\n':
			keys = append(keys, Key{Kind: KeyEnter})
		case b >= 0x20 && b < 0x7f:
			keys = append(keys, Key{Kind: KeyRune, Rune: b})
		default:
			keys = append(keys, Key{Kind: KeyUnknown})
		}
	}
	return keys
}

func csiKey(final byte) Key {
	switch final {
	case 'A':
		return Key{Kind: KeyUp}
	case 'B':
		return Key{Kind: KeyDown}
	case 'C':
		return Key{Kind: KeyRight}
	case 'D':
		return Key{Kind: KeyLeft}
	case 'I':
		return Key{Kind: KeyFocusIn}
	case 'O':
		return Key{Kind: KeyFocusOut}
	default:
		return Key{Kind: KeyUnknown}
	}
}

// isYes reports whether k confirms a prompt.
func isYes(k Key) bool {
	return k.Kind == KeyRune && (k.Rune == 'y' || k.Rune == 'Y')
}
