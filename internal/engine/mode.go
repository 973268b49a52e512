package engine

// ControlMode is the closed set of operating modes.
type ControlMode uint8

const (
	// Manual disables the automatic pipeline; speed changes only through
	// explicit operator commands.
	Manual ControlMode = iota
	// ClassicAuto runs the plain environmental curve every tick.
	ClassicAuto
	// AiAssist runs the curve with a more aggressive risk posture.
	AiAssist
)

// DefaultMode is the mode active at startup and the fallback for
// unrecognized mode keys.
const DefaultMode = ClassicAuto

func (m ControlMode) Key() string {
	switch m {
	case Manual:
		return "manual"
	case AiAssist:
		return "ai_assist"
	default:
		return "classic_auto"
	}
}

func (m ControlMode) Label() string {
	switch m {
	case Manual:
		return "Manual"
	case AiAssist:
		return "AI Assist"
	default:
		return "Classic Auto"
	}
}

// Automatic reports whether the mode runs the curve pipeline each tick.
func (m ControlMode) Automatic() bool {
	return m != Manual
}

// ModeFromKey resolves a wire key, falling back to the default mode so a
// malformed command can never leave the device uncontrolled.
func ModeFromKey(key string) ControlMode {
	switch key {
	case "manual":
		return Manual
	case "ai_assist":
		return AiAssist
	case "classic_auto":
		return ClassicAuto
	default:
		return DefaultMode
	}
}
