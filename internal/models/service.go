package models

/**
 * Sole source of truth serialized into the service configuration
 */
type ServiceDescriptor struct {
	BinaryPath    string `json:"binaryPath"`
	ListenAddress string `json:"listenAddress"`
	Port          int    `json:"port"`
	Method        string `json:"method"`
	Secret        string `json:"secret"`
	Tag           string `json:"tag"`
}

// UnitKind is the supervisor backend variant selected for the run
type UnitKind string

const (
	UnitOpenRC  UnitKind = "openrc"
	UnitSystemd UnitKind = "systemd"
	UnitNone    UnitKind = "none"
)

// UnitOutcome is the enable/start result of the selected unit
type UnitOutcome string

const (
	OutcomeStarted      UnitOutcome = "started"
	OutcomeEnableFailed UnitOutcome = "enable-failed"
	OutcomeSkipped      UnitOutcome = "skipped-no-supervisor"
)

// ServiceUnit describes the single unit produced by service registration.
type ServiceUnit struct {
	Kind    UnitKind    `json:"kind"`
	Path    string      `json:"path,omitempty"`
	Outcome UnitOutcome `json:"outcome"`
}

// ConnectionLink carries the two URI encodings of the same credential tuple
type ConnectionLink struct {
	SIP002 string `json:"sip002"`
	Legacy string `json:"legacy"`
}
