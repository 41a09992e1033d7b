package fan

import "fan-control-backend/internal/device"

// Transition tells the renderer how to animate the icon between angles.
type Transition struct {
	Easing     string `json:"easing"`
	DurationMs int64  `json:"durationMs"`
}

// Snapshot is a point-in-time copy of the panel state. Seq grows with
// every power, speed or error change; frames keep the Seq of the state they
// animate.
type Snapshot struct {
	Seq             uint64         `json:"seq"`
	Power           bool           `json:"power"`
	Speed           int            `json:"speed"`
	Command         device.Command `json:"command"`
	Rotation        int            `json:"rotation"`
	Running         bool           `json:"running"`
	ConnectionError string         `json:"connectionError,omitempty"`
	Transition      Transition     `json:"transition"`
}

