package vault

import "fmt"

// Mode selects which panel the user is working in
type Mode int

const (
	ModeEncode Mode = iota
	ModeLookup
)

func (m Mode) String() string {
	switch m {
	case ModeEncode:
		return "encode"
	case ModeLookup:
		return "lookup"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Other returns the mode a toggle switches to
func (m Mode) Other() Mode {
	if m == ModeEncode {
		return ModeLookup
	}
	return ModeEncode
}

// ParseMode parses "encode"/"encrypt" or "lookup"/"decrypt"
func ParseMode(s string) (Mode, error) {
	switch s {
	case "encode", "encrypt":
		return ModeEncode, nil
	case "lookup", "decrypt":
		return ModeLookup, nil
	default:
		return ModeEncode, fmt.Errorf("unknown mode %q", s)
	}
}
