package domain

import "time"

// DriveSpeed selects the playback cadence of an automated drive.
type DriveSpeed int

const (
	SpeedSlow DriveSpeed = iota
	SpeedNormal
	SpeedFast
)

// TickInterval maps a speed to the delay between camera advances.
func (s DriveSpeed) TickInterval() time.Duration {
	switch s {
	case SpeedSlow:
		return 3 * time.Second
	case SpeedFast:
		return 1 * time.Second
	default:
		return 2 * time.Second
	}
}

func (s DriveSpeed) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedFast:
		return "fast"
	default:
		return "normal"
	}
}

// ParseDriveSpeed converts a wire value into a DriveSpeed.
func ParseDriveSpeed(s string) (DriveSpeed, bool) {
	switch s {
	case "slow":
		return SpeedSlow, true
	case "normal":
		return SpeedNormal, true
	case "fast":
		return SpeedFast, true
	}
	return SpeedNormal, false
}

// DrivePhase enumerates the engine's state machine phases.
type DrivePhase int

const (
	PhaseIdle DrivePhase = iota
	PhaseInitializing
	PhasePlaying
	PhasePaused
	PhaseBuffering
	PhaseCompleted
	PhaseFailed
)

func (p DrivePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInitializing:
		return "initializing"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseBuffering:
		return "buffering"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DriveState is the engine's tagged state variant.
// Fetched/Required carry progress during PhaseInitializing; Message carries
// the human-readable reason for PhaseFailed. Only the engine mutates it.
type DriveState struct {
	Phase    DrivePhase
	Fetched  int
	Required int
	Message  string
}
