package domain

import "time"

// RecordingState identifies the single active recording session. It is
// persisted so that a later CLI invocation can rediscover and control a
// recorder launched by an earlier one.
type RecordingState struct {
	PID       int       `json:"pid"`
	BagName   string    `json:"bag_name"`
	BagPath   string    `json:"bag_path"`
	StartTime time.Time `json:"start_time"`
	Command   []string  `json:"command"`
}

// ArmedSample is one observation from a vehicle status feed. The auto-start
// monitor reacts to transitions of Armed between samples.
type ArmedSample struct {
	Armed bool
	// ArmingState is the raw state value from the feed. Transition-triggered
	// strategies compare it across samples rather than the derived Armed flag.
	ArmingState int
}
