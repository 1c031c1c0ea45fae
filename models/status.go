package models

// Subsystem identifies one independently tracked kiosk component.
type Subsystem string

const (
	SubsystemLock        Subsystem = "lock"
	SubsystemDoor        Subsystem = "door"
	SubsystemTransaction Subsystem = "transaction"
	SubsystemTraining    Subsystem = "training"
)

// Subsystems is the closed set of status board keys.
var Subsystems = []Subsystem{
	SubsystemLock,
	SubsystemDoor,
	SubsystemTransaction,
	SubsystemTraining,
}

// StatusValue is the lifecycle indicator of a subsystem.
type StatusValue string

const (
	StatusIdle    StatusValue = "idle"
	StatusInfo    StatusValue = "info"
	StatusSuccess StatusValue = "success"
	StatusError   StatusValue = "error"
	StatusWarning StatusValue = "warning"
)

// StatusEntry pairs a subsystem with its current value.
type StatusEntry struct {
	Subsystem Subsystem   `json:"subsystem"`
	Value     StatusValue `json:"value"`
}
