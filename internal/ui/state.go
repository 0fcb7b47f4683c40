// Package ui centralizes all enable/disable and visibility decisions for the
// presentation layer. Transitions are named after lifecycle triggers; ad hoc
// flag flipping is not allowed anywhere else.
package ui

import (
	"fmt"
	"time"
)

// Mode selects which generation parameters the presentation collects.
type Mode string

const (
	ModeEasy     Mode = "easy"
	ModeAdvanced Mode = "advanced"
)

// CountdownPhase identifies what the countdown dialog is showing.
type CountdownPhase string

const (
	PhasePreRoll   CountdownPhase = "preroll"
	PhaseRecording CountdownPhase = "recording"
	PhaseDone      CountdownPhase = "done"
)

// Notice is a blocking notification surfaced exactly once.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Countdown mirrors the countdown dialog state.
type Countdown struct {
	Visible   bool           `json:"visible"`
	Phase     CountdownPhase `json:"phase,omitempty"`
	Remaining int            `json:"remaining"`
}

// Snapshot is one sequenced, complete picture of the interactive surface.
// The frontend renders snapshots verbatim and keeps no state of its own.
type Snapshot struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	ModelReady  bool   `json:"modelReady"`
	ModelFailed bool   `json:"modelFailed"`
	Mode        Mode   `json:"mode"`
	Status      string `json:"status"`

	RecordEnabled        bool `json:"recordEnabled"`
	GenerateEnabled      bool `json:"generateEnabled"`
	PlaySampleEnabled    bool `json:"playSampleEnabled"`
	PlayGeneratedEnabled bool `json:"playGeneratedEnabled"`
	RemoveSampleEnabled  bool `json:"removeSampleEnabled"`

	DropPromptVisible     bool   `json:"dropPromptVisible"`
	FileInfoVisible       bool   `json:"fileInfoVisible"`
	SampleLabel           string `json:"sampleLabel"`
	GeneratedPanelVisible bool   `json:"generatedPanelVisible"`
	GeneratedLabel        string `json:"generatedLabel"`
	ParamsPanelVisible    bool   `json:"paramsPanelVisible"`
	TextEntryCompact      bool   `json:"textEntryCompact"`

	Countdown Countdown `json:"countdown"`
	Indicator string    `json:"indicator"`

	Notice *Notice `json:"notice,omitempty"`
}

// StateMachine owns the interactive element states for the process lifetime.
// It must only be driven from the dispatch loop, so it carries no lock.
type StateMachine struct {
	bus  *EventBus
	snap Snapshot
}

// NewStateMachine creates the machine in its pre-launch state, publishing
// every transition to bus.
func NewStateMachine(bus *EventBus) *StateMachine {
	return &StateMachine{
		bus: bus,
		snap: Snapshot{
			Mode:              ModeEasy,
			DropPromptVisible: true,
		},
	}
}

// Snapshot returns the current state without publishing.
func (m *StateMachine) Snapshot() Snapshot {
	return m.snap
}

// Mode returns the current parameter collection mode.
func (m *StateMachine) Mode() Mode {
	return m.snap.Mode
}

// publish stamps and broadcasts the current state. A pending notice is
// delivered with exactly one snapshot and then cleared.
func (m *StateMachine) publish() {
	m.bus.Publish(m.snap)
	m.snap.Notice = nil
}

// AppLaunched enters the initial loading state with all actions disabled.
func (m *StateMachine) AppLaunched() {
	m.snap.Status = "Initializing…"
	m.snap.RecordEnabled = false
	m.snap.GenerateEnabled = false
	m.snap.PlaySampleEnabled = false
	m.snap.PlayGeneratedEnabled = false
	m.snap.RemoveSampleEnabled = false
	m.publish()
}

// ModelLoadSucceeded reveals the main surface and arms the action controls.
func (m *StateMachine) ModelLoadSucceeded() {
	m.snap.ModelReady = true
	m.snap.Status = "Model loaded! Drop an audio file or record from microphone."
	m.snap.RecordEnabled = true
	m.snap.GenerateEnabled = true
	m.publish()
}

// ModelLoadFailed leaves actions disabled and surfaces a blocking notice.
// There is no retry; the process must be restarted.
func (m *StateMachine) ModelLoadFailed(title, reason string) {
	m.snap.ModelFailed = true
	m.snap.Status = "ERROR: " + reason
	m.snap.Notice = &Notice{Title: title, Message: reason}
	m.publish()
}

// SampleLoadSucceeded shows the file-info panel and hides the drop prompt.
func (m *StateMachine) SampleLoadSucceeded(name string, duration float64) {
	m.snap.SampleLabel = fmt.Sprintf("%s (%.1fs)", name, duration)
	m.snap.FileInfoVisible = true
	m.snap.DropPromptVisible = false
	m.snap.PlaySampleEnabled = true
	m.snap.RemoveSampleEnabled = true
	m.snap.Status = "Voice sample loaded: " + name
	m.publish()
}

// SampleRemoved restores the empty drop zone.
func (m *StateMachine) SampleRemoved() {
	m.snap.SampleLabel = ""
	m.snap.FileInfoVisible = false
	m.snap.DropPromptVisible = true
	m.snap.PlaySampleEnabled = false
	m.snap.RemoveSampleEnabled = false
	m.snap.Status = "File removed"
	m.publish()
}

// RecordingStarted disables the record control for the capture duration.
func (m *StateMachine) RecordingStarted() {
	m.snap.RecordEnabled = false
	m.snap.Status = "Recording... Speak now!"
	m.publish()
}

// RecordingFinished re-enables the record control after the staged
// post-recording updates have run.
func (m *StateMachine) RecordingFinished() {
	m.snap.RecordEnabled = true
	m.snap.Status = "Recording complete! Enter text and click Generate & Play."
	m.publish()
}

// RecordingFailed closes the countdown dialog and surfaces the failure.
func (m *StateMachine) RecordingFailed(reason string) {
	m.snap.Countdown = Countdown{}
	m.snap.RecordEnabled = true
	m.snap.Status = "ERROR: Recording failed: " + reason
	m.snap.Notice = &Notice{Title: "Recording Error", Message: reason}
	m.publish()
}

// GenerationStarted disables Generate and Record while synthesis runs.
func (m *StateMachine) GenerationStarted() {
	m.snap.GenerateEnabled = false
	m.snap.RecordEnabled = false
	m.snap.Status = ""
	m.snap.Indicator = "Generating"
	m.publish()
}

// GenerationSucceeded shows the generated-audio panel and re-arms controls.
func (m *StateMachine) GenerationSucceeded(label string) {
	m.snap.Indicator = ""
	m.snap.GeneratedLabel = label
	m.snap.GeneratedPanelVisible = true
	m.snap.PlayGeneratedEnabled = true
	m.snap.GenerateEnabled = true
	m.snap.RecordEnabled = true
	m.snap.Status = "Speech generated! Auto-playing..."
	m.publish()
}

// GenerationFailed stops the indicator and surfaces the failure.
func (m *StateMachine) GenerationFailed(reason string) {
	m.snap.Indicator = ""
	m.snap.GenerateEnabled = true
	m.snap.RecordEnabled = true
	m.snap.Status = "ERROR: " + reason
	m.snap.Notice = &Notice{Title: "Generation Error", Message: reason}
	m.publish()
}

// ModeToggled flips Easy/Advanced and the dependent panel visibility. An
// in-flight job is never affected.
func (m *StateMachine) ModeToggled() Mode {
	if m.snap.Mode == ModeEasy {
		m.snap.Mode = ModeAdvanced
	} else {
		m.snap.Mode = ModeEasy
	}
	advanced := m.snap.Mode == ModeAdvanced
	m.snap.ParamsPanelVisible = advanced
	m.snap.TextEntryCompact = advanced
	m.publish()
	return m.snap.Mode
}

// CountdownTick updates the countdown dialog, opening it if needed.
func (m *StateMachine) CountdownTick(phase CountdownPhase, remaining int) {
	m.snap.Countdown = Countdown{Visible: true, Phase: phase, Remaining: remaining}
	m.publish()
}

// CloseCountdown hides the countdown dialog.
func (m *StateMachine) CloseCountdown() {
	m.snap.Countdown = Countdown{}
	m.publish()
}

// IndicatorFrame advances the generating indicator animation.
func (m *StateMachine) IndicatorFrame(frame string) {
	m.snap.Indicator = frame
	m.publish()
}

// SetStatus writes a plain status-line message.
func (m *StateMachine) SetStatus(text string) {
	m.snap.Status = text
	m.publish()
}

// Notify surfaces a blocking notification alongside a status update.
func (m *StateMachine) Notify(title, message string) {
	m.snap.Status = "ERROR: " + message
	m.snap.Notice = &Notice{Title: title, Message: message}
	m.publish()
}
