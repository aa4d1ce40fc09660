// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines every entity persisted into a session bundle
// (§3 of the specification this module implements) and the
// schema-versioned root document, data.json. The Session Runtime is
// the sole writer of SessionData; every other component communicates
// what it observed through typed values that flow into this package,
// never by mutating SessionData directly.
//
// No type in this package ever carries plaintext user input or child
// output — that is the central privacy invariant of the whole system,
// and it is enforced by construction: nothing here has a field capable
// of holding it. Where a human-meaningful label is sometimes needed
// (markers), both a plaintext form and a SHA-256 form exist, and the
// caller chooses which one to populate based on an explicit unsafe
// flag.
package schema

import (
	"encoding/json"
)

// CurrentVersion is the schemaVersion written into every new
// data.json. It is a literal string, not a number, so that future
// incompatible revisions can use non-numeric identifiers without a
// type change.
const CurrentVersion = "2"

// TurnSource distinguishes how a turn boundary was detected.
type TurnSource string

const (
	TurnSourceEnter  TurnSource = "enter"
	TurnSourceHotkey TurnSource = "hotkey"
)

// TurnEvent is a detected user "send" boundary. Index is 1-based and
// strictly increasing with no gaps or duplicates.
type TurnEvent struct {
	Index  int        `json:"index"`
	TMs    int64      `json:"tMs"`
	Source TurnSource `json:"source"`
}

// InteractionKind distinguishes a keystroke coalescence window from a
// turn-scoped latency window.
type InteractionKind string

const (
	InteractionKindKeystroke InteractionKind = "keystroke"
	InteractionKindTurn      InteractionKind = "turn"
)

// EndReason records why an Interaction stopped accumulating output.
type EndReason string

const (
	EndReasonBurstIdle  EndReason = "burst_idle"
	EndReasonTimeout    EndReason = "timeout"
	EndReasonSessionEnd EndReason = "session_end"
	EndReasonOverlap    EndReason = "overlap"
)

// Interaction is a finalized latency observation window. T1Ms and
// T2Ms, when present, are relative to T0Ms (not absolute session
// time): T1Ms is the first-output delay, T2Ms is the response-complete
// delay.
type Interaction struct {
	ID          int64           `json:"id"`
	Kind        InteractionKind `json:"kind"`
	T0Ms        int64           `json:"t0Ms"`
	T1Ms        *int64          `json:"t1Ms,omitempty"`
	T2Ms        *int64          `json:"t2Ms,omitempty"`
	InputBytes  int64           `json:"inputBytes"`
	OutputBytes int64           `json:"outputBytes"`
	TurnIndex   *int            `json:"turnIndex,omitempty"`
	EndReason   EndReason       `json:"endReason"`
}

// MarkerEvent is a timeline annotation emitted from a sibling CLI
// invocation (the "mark" subcommand). Exactly one of Label or
// LabelSha256 is set when an annotation was provided; both are nil for
// an unlabeled marker.
type MarkerEvent struct {
	TMs         int64   `json:"tMs"`
	Label       *string `json:"label,omitempty"`
	LabelSha256 *string `json:"labelSha256,omitempty"`
}

// LinuxProcessExtras carries the Linux-specific counters the basic
// cross-platform probe cannot provide. Nil on non-Linux platforms.
type LinuxProcessExtras struct {
	MinorFaults              int64 `json:"minorFaults"`
	MajorFaults              int64 `json:"majorFaults"`
	VoluntaryContextSwitch   int64 `json:"voluntaryContextSwitches"`
	InvoluntaryContextSwitch int64 `json:"involuntaryContextSwitches"`
	OpenFileDescriptors      int64 `json:"openFileDescriptors"`
	Threads                  int64 `json:"threads"`
}

// ProcessSample is a point-in-time resource snapshot of the child
// process. Error is set, and every other optional field omitted, when
// the probe failed for this tick (e.g. the child had already exited).
type ProcessSample struct {
	TMs        int64               `json:"tMs"`
	Pid        int                 `json:"pid"`
	RSSBytes   *int64              `json:"rssBytes,omitempty"`
	CPUPercent float64             `json:"cpuPercent"`
	Linux      *LinuxProcessExtras `json:"linux,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// ExternalLogSizeSample records the size of the selected external
// conversation log at a turn boundary.
type ExternalLogSizeSample struct {
	TurnIndex int   `json:"turnIndex"`
	TMs       int64 `json:"tMs"`
	SizeBytes int64 `json:"sizeBytes"`
}

// CorrelationMode describes which strategy the correlator used to map
// external-log records onto turns.
type CorrelationMode string

const (
	CorrelationModeTimestamps CorrelationMode = "timestamps"
	CorrelationModeSequential CorrelationMode = "sequential"
	CorrelationModeNone       CorrelationMode = "none"
)

// PerTurnCorrelation is the post-hoc aggregate of external-log records
// attributed to one turn.
type PerTurnCorrelation struct {
	TurnIndex        int      `json:"turnIndex"`
	RecordCount      int64    `json:"recordCount"`
	RecordBytes      int64    `json:"recordBytes"`
	ToolUseCount     int64    `json:"toolUseCount"`
	ToolUseNames     []string `json:"toolUseNames,omitempty"`
	InputTokenCount  *int64   `json:"inputTokenCount,omitempty"`
	OutputTokenCount *int64   `json:"outputTokenCount,omitempty"`
}

// ExternalLogCorrelation is the result of the opt-in, post-session
// correlator. It never carries any parsed line content — only derived
// aggregates.
type ExternalLogCorrelation struct {
	Mode        CorrelationMode       `json:"mode"`
	ParsedLines int64                 `json:"parsedLines"`
	ParseErrors int64                 `json:"parseErrors"`
	PerTurn     []PerTurnCorrelation  `json:"perTurn"`
	Notes       []string              `json:"notes,omitempty"`
}

// ExternalLogTracking is the `jsonl` field of the session document: the
// External-Log Tracker's selection outcome, its per-turn size samples,
// and (if requested) the correlator's result. PathSha256 is the sole
// persisted representation of the selected path.
type ExternalLogTracking struct {
	Selected              bool                    `json:"selected"`
	PathSha256            string                  `json:"pathSha256,omitempty"`
	AllowReadForSelection bool                    `json:"allowReadForSelection"`
	SizeSamples           []ExternalLogSizeSample `json:"sizeSamples,omitempty"`
	Correlation           *ExternalLogCorrelation `json:"correlation,omitempty"`
}

// WarningClass groups warnings by the subsystem that raised them.
type WarningClass string

const (
	WarningClassChild       WarningClass = "child"
	WarningClassSampler     WarningClass = "sampler"
	WarningClassExternalLog WarningClass = "external_log"
	WarningClassFinalize    WarningClass = "finalize"
	WarningClassReport      WarningClass = "report"
	WarningClassInterrupt   WarningClass = "interrupt"
	WarningClassDuration    WarningClass = "duration"
)

// WarningCode is a closed, machine-parseable code identifying what
// went wrong. Detail carries the original error text only when the
// operator opted in with --unsafe-store-errors; otherwise it is a
// fixed short string chosen by code.
type WarningCode string

const (
	WarningCodeChildExitNonZero           WarningCode = "child_exit_non_zero"
	WarningCodeProbeFailed                WarningCode = "probe_failed"
	WarningCodeDurationTimeout            WarningCode = "duration_timeout"
	WarningCodeInterrupt                  WarningCode = "interrupt"
	WarningCodeReportRenderFailed         WarningCode = "report_render_failed"
	WarningCodeFinalizeStepFailed         WarningCode = "finalize_step_failed"
	WarningCodeExternalLogStatFailed      WarningCode = "external_log_stat_failed"
	WarningCodeExternalLogSelectionFailed WarningCode = "external_log_selection_failed"
	WarningCodeMarkerIOFailed             WarningCode = "marker_io_failed"
)

// Warning is a short, class/code form in-session degradation record.
// Detail holds raw error text only under --unsafe-store-errors;
// otherwise it is a fixed short description of Code.
type Warning struct {
	Class  WarningClass `json:"class"`
	Code   WarningCode  `json:"code"`
	Detail string       `json:"detail,omitempty"`
}

// Config is the validated subset of the run configuration (spec §6)
// that is safe to persist. Plaintext forms of Cwd, Binary, and the
// target command are withheld unless the corresponding --unsafe-store-*
// flag was set; otherwise only their SHA-256 hashes are recorded.
type Config struct {
	SessionID            string   `json:"sessionId"`
	OutputDir            string   `json:"outputDir"`
	CwdSha256            string   `json:"cwdSha256,omitempty"`
	Cwd                  string   `json:"cwd,omitempty"`
	BinarySha256         string   `json:"binarySha256,omitempty"`
	Binary               string   `json:"binary,omitempty"`
	CommandSha256        string   `json:"commandSha256,omitempty"`
	Command              []string `json:"command,omitempty"`
	JSONLPathOverride    string   `json:"jsonlPathOverride,omitempty"`
	TurnHotkey           string   `json:"turnHotkey"`
	DurationMs           *int64   `json:"durationMs,omitempty"`
	BurstIdleMs          int64    `json:"burstIdleMs"`
	SampleIntervalMs     int64    `json:"sampleIntervalMs"`
	InteractionTimeoutMs int64    `json:"interactionTimeoutMs"`
	DisableMCPs          bool     `json:"disableMcps"`
	CorrelateJSONL       bool     `json:"correlateJsonl"`
	UnsafeStorePaths     bool     `json:"unsafeStorePaths"`
	UnsafeStoreCommand   bool     `json:"unsafeStoreCommand"`
	UnsafeStoreErrors    bool     `json:"unsafeStoreErrors"`
}

// Environment is a minimal snapshot of terminal/OS identifiers used
// for human context in the rendered report. Full environment discovery
// (CPU model, assistant version, etc.) is an external collaborator
// (§1) and out of scope here; this repo carries only what §6
// explicitly names as read directly by the core.
type Environment struct {
	OS          string `json:"os"`
	Term        string `json:"term,omitempty"`
	TermProgram string `json:"termProgram,omitempty"`
	ColorTerm   string `json:"colorTerm,omitempty"`
}

// Calibration holds PTY-overhead calibration results. The calibrator
// itself is an external collaborator (§1) not implemented by this
// module; the field exists so a future calibrator can populate it
// without a schema change. Nil means calibration did not run.
type Calibration struct {
	PtyOverheadMs *float64 `json:"ptyOverheadMs,omitempty"`
}

// SessionData is the schema-versioned root of data.json. The Session
// Runtime is its single writer; it is written exactly once, at
// finalize.
type SessionData struct {
	SchemaVersion string                `json:"schemaVersion"`
	CreatedAtIso  string                `json:"createdAtIso"`
	StartedAtIso  string                `json:"startedAtIso"`
	EndedAtIso    string                `json:"endedAtIso,omitempty"`
	Config        Config                `json:"config"`
	Environment   Environment           `json:"environment"`
	Calibration   *Calibration          `json:"calibration,omitempty"`
	JSONL         ExternalLogTracking   `json:"jsonl"`
	Turns         []TurnEvent           `json:"turns"`
	Interactions  []Interaction         `json:"interactions"`
	Markers       []MarkerEvent         `json:"markers"`
	Samples       []ProcessSample       `json:"samples"`
	Warnings      []Warning             `json:"warnings"`
}

// New creates an empty SessionData stamped with the current schema
// version and createdAtIso. Turns, Interactions, Markers, Samples and
// Warnings start as empty (non-nil) slices so they serialize as `[]`
// rather than `null`.
func New(config Config, environment Environment, startedAtIso, createdAtIso string) *SessionData {
	return &SessionData{
		SchemaVersion: CurrentVersion,
		CreatedAtIso:  createdAtIso,
		StartedAtIso:  startedAtIso,
		Config:        config,
		Environment:   environment,
		Turns:         []TurnEvent{},
		Interactions:  []Interaction{},
		Markers:       []MarkerEvent{},
		Samples:       []ProcessSample{},
		Warnings:      []Warning{},
	}
}

// Encode serializes SessionData as indented JSON, matching the
// on-disk data.json format.
func (s *SessionData) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses data.json bytes into a SessionData without checking
// the schema version. Callers that need version enforcement (the
// report subcommand) should use DecodeVersioned.
func Decode(data []byte) (*SessionData, error) {
	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

