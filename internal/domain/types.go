package domain

// JobKind identifies the blocking operation a background job performs.
type JobKind string

const (
	JobKindModelLoad  JobKind = "model_load"
	JobKindSampleLoad JobKind = "sample_load"
	JobKindRecording  JobKind = "recording"
	JobKindSynthesis  JobKind = "synthesis"
)

// JobState tracks the forward-only lifecycle of one background job.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
)

// Job stores identity and lifecycle state for one unit of background work.
type Job struct {
	ID    string   `json:"id"`
	Kind  JobKind  `json:"kind"`
	State JobState `json:"state"`
}

// Session is the single long-lived mutable state object for a run of the
// application. Fields are mutated only on the dispatch loop.
type Session struct {
	VoiceSamplePath     string  `json:"voiceSamplePath"`
	VoiceSampleName     string  `json:"voiceSampleName"`
	VoiceSampleDuration float64 `json:"voiceSampleDuration"`
	GeneratedAudioPath  string  `json:"generatedAudioPath"`
	AdvancedMode        bool    `json:"advancedMode"`
}

// Settings contains user-adjustable runtime configuration.
type Settings struct {
	ModelDir        string `json:"modelDir" env:"VOICECLONE_MODEL_DIR"`
	RecordingsDir   string `json:"recordingsDir" env:"VOICECLONE_RECORDINGS_DIR"`
	OutputDir       string `json:"outputDir" env:"VOICECLONE_OUTPUT_DIR"`
	PlaybackCommand string `json:"playbackCommand" env:"VOICECLONE_PLAYBACK_COMMAND"`
}
