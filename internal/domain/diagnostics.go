package domain

import "time"

// CheckStatus indicates whether a single startup check passed.
type CheckStatus string

const (
	CheckStatusPass CheckStatus = "pass"
	CheckStatusFail CheckStatus = "fail"
)

// Well-known startup check identifiers.
const (
	CheckToolFFmpeg    = "tool_ffmpeg"
	CheckToolFFprobe   = "tool_ffprobe"
	CheckToolIndexTTS  = "tool_indextts"
	CheckModelLocation = "model_location"
	CheckRecordingsDir = "recordings_dir"
	CheckOutputDir     = "output_dir"
)

// DiagnosticItem is one startup check result with an optional hint.
type DiagnosticItem struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// DiagnosticReport aggregates startup checks for the UI.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	HasFailures bool             `json:"hasFailures"`
	Items       []DiagnosticItem `json:"items"`
}
