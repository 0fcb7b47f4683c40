// Package bootstrap wires the dispatch loop, job runner, UI state machine,
// and external audio tooling into the desktop application.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"voice-clone-studio/internal/audio"
	"voice-clone-studio/internal/config"
	"voice-clone-studio/internal/diagnostics"
	"voice-clone-studio/internal/dispatch"
	"voice-clone-studio/internal/domain"
	"voice-clone-studio/internal/jobs"
	"voice-clone-studio/internal/model"
	"voice-clone-studio/internal/sequence"
	"voice-clone-studio/internal/ui"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var audioDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio files",
		Pattern:     "*.wav;*.mp3;*.m4a;*.aiff;*.flac",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

const (
	preRollSeconds    = 3
	countdownInterval = time.Second
	closeDialogDelay  = 500 * time.Millisecond
	autoLoadDelay     = 600 * time.Millisecond
	indicatorInterval = 200 * time.Millisecond
	eventHistorySize  = 500
	loopBufferSize    = 64
)

var indicatorFrames = []string{"Generating", "Generating.", "Generating..", "Generating..."}

// modelService loads the checkpoint and runs synthesis.
type modelService interface {
	Load(ctx context.Context) (model.Handle, error)
	Infer(ctx context.Context, handle model.Handle, req model.InferRequest) error
}

// sampleValidator checks and normalizes candidate voice samples.
type sampleValidator interface {
	ValidateAndNormalize(path string, maxDuration float64) (audio.NormalizedSample, error)
}

// microphone captures a fixed-length take from the default input device.
type microphone interface {
	Record(ctx context.Context) (audio.Recording, error)
}

// audioPlayer starts playback without waiting for it to finish.
type audioPlayer interface {
	Play(path string) error
}

// GenerateRequest carries the text and optional tuning for one synthesis.
type GenerateRequest struct {
	Text   string                  `json:"text"`
	Params domain.GenerationParams `json:"params"`
}

// App wires configuration, the dispatch loop, jobs, and UI runtime callbacks.
// Session and model fields are touched only on the dispatch loop; Settings,
// Diagnostics, and the runtime context are guarded by mu because Wails calls
// bound methods from arbitrary goroutines.
type App struct {
	Store       config.Store
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker

	loop      *dispatch.Loop
	runner    *jobs.Runner
	preRoll   *sequence.Sequencer
	countdown *sequence.Sequencer
	state     *ui.StateMachine
	bus       *ui.EventBus

	models     modelService
	samples    sampleValidator
	microphone microphone
	player     audioPlayer
	now        func() time.Time

	tick          time.Duration
	closeDelay    time.Duration
	autoDelay     time.Duration
	indicatorTick time.Duration

	session      domain.Session
	modelHandle  model.Handle
	modelReady   bool
	indicatorOn  bool
	indicatorIdx int

	mu         sync.Mutex
	settings   domain.Settings
	runtimeCtx context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	app := newApp(store, settings, assets, checker)
	app.models = model.NewService(model.NewLocator(settings.ModelDir))
	app.samples = audio.NewToolkit()
	app.microphone = audio.NewRecorder(settings.RecordingsDir)
	app.player = audio.NewPlayer(settings.PlaybackCommand)
	app.Diagnostics = report
	return app, nil
}

func newApp(store config.Store, settings domain.Settings, assets fs.FS, checker *diagnostics.Checker) *App {
	loop := dispatch.NewLoop(loopBufferSize)
	bus := ui.NewEventBus(eventHistorySize)

	app := &App{
		Store:         store,
		assets:        assets,
		checker:       checker,
		loop:          loop,
		runner:        jobs.NewRunner(loop),
		preRoll:       sequence.New(loop),
		countdown:     sequence.New(loop),
		state:         ui.NewStateMachine(bus),
		bus:           bus,
		now:           time.Now,
		settings:      settings,
		tick:          countdownInterval,
		closeDelay:    closeDialogDelay,
		autoDelay:     autoLoadDelay,
		indicatorTick: indicatorInterval,
	}
	loop.Start()
	return app
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Voice Clone Studio",
		Width:       560,
		Height:      860,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			a.runtimeCtx = nil
			a.mu.Unlock()
			a.loop.Close()
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the Wails runtime context, connects snapshot push events,
// and kicks off background model loading.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	a.bus.SetEmitter(func(snap ui.Snapshot) {
		a.mu.Lock()
		rctx := a.runtimeCtx
		a.mu.Unlock()
		if rctx != nil {
			wailsruntime.EventsEmit(rctx, "ui:state", snap)
		}
	})

	a.Bootstrap()
}

// Bootstrap schedules the launch sequence on the dispatch loop.
func (a *App) Bootstrap() {
	a.loop.Post(a.initialize)
}

// initialize runs on the dispatch loop: it publishes the launch state and
// starts the one-shot model load. Load failures are terminal for the session;
// there is no retry surface.
func (a *App) initialize() {
	a.state.AppLaunched()

	_, err := a.runner.Start(domain.JobKindModelLoad,
		func(ctx context.Context) (any, error) {
			return a.models.Load(ctx)
		},
		func(result any) {
			a.modelHandle = result.(model.Handle)
			a.modelReady = true
			a.state.ModelLoadSucceeded()
		},
		func(failure *domain.AppError) {
			a.state.ModelLoadFailed("Model Load Error", failure.Message)
		},
	)
	if err != nil {
		a.state.ModelLoadFailed("Model Load Error", err.Error())
	}
}

// UIState returns the current interactive-surface snapshot.
func (a *App) UIState() ui.Snapshot {
	var snap ui.Snapshot
	a.loop.Do(func() { snap = a.state.Snapshot() })
	return snap
}

// UIEvents returns every published snapshot newer than seq, oldest first.
func (a *App) UIEvents(seq int64) []ui.Snapshot {
	return a.bus.Since(seq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// PickSampleFile opens a native file dialog for voice sample selection.
func (a *App) PickSampleFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select voice sample",
		Filters: audioDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// LoadSample validates the file and makes it the session voice sample.
func (a *App) LoadSample(path string) error {
	var err error
	a.loop.Do(func() { err = a.loadSample(path, "", nil) })
	return err
}

// loadSample runs on the dispatch loop. A non-empty label overrides the
// display name, which fresh recordings use for their timestamp caption, and
// onLoaded runs after a successful load has updated the session.
func (a *App) loadSample(path, label string, onLoaded func()) error {
	if a.runner.Busy() || a.preRoll.Active() {
		return busyError()
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return domain.E(domain.ErrValidationFailed, "no file selected")
	}
	if label == "" {
		label = filepath.Base(path)
	}

	_, err := a.runner.Start(domain.JobKindSampleLoad,
		func(ctx context.Context) (any, error) {
			return a.samples.ValidateAndNormalize(path, audio.MaxSampleDuration)
		},
		func(result any) {
			sample := result.(audio.NormalizedSample)
			a.session.VoiceSamplePath = sample.Path
			a.session.VoiceSampleName = label
			a.session.VoiceSampleDuration = sample.Duration
			a.state.SampleLoadSucceeded(label, sample.Duration)
			if onLoaded != nil {
				onLoaded()
			}
		},
		func(failure *domain.AppError) {
			a.state.Notify("Cannot Load Audio File", failure.Message)
		},
	)
	return err
}

// RemoveSample clears the session voice sample. The file stays on disk.
func (a *App) RemoveSample() {
	a.loop.Do(func() {
		a.session.VoiceSamplePath = ""
		a.session.VoiceSampleName = ""
		a.session.VoiceSampleDuration = 0
		a.state.SampleRemoved()
	})
}

// RecordSample starts the countdown-record-autoload flow.
func (a *App) RecordSample() error {
	var err error
	a.loop.Do(func() { err = a.recordSample() })
	return err
}

// recordSample runs on the dispatch loop. The pre-roll gives the user three
// seconds to get ready before capture begins.
func (a *App) recordSample() error {
	if a.runner.Busy() || a.preRoll.Active() || a.countdown.Active() {
		return busyError()
	}
	if !a.modelReady {
		return domain.E(domain.ErrValidationFailed, "the model is still loading")
	}

	a.preRoll.Start(preRollSeconds, a.tick,
		func(remaining int) {
			a.state.CountdownTick(ui.PhasePreRoll, remaining)
		},
		a.beginCapture,
	)
	return nil
}

// beginCapture runs on the dispatch loop when the pre-roll ends. The visible
// countdown is cosmetic; capture length is enforced by the recorder itself.
func (a *App) beginCapture() {
	a.state.RecordingStarted()

	a.countdown.Start(audio.RecordSeconds, a.tick,
		func(remaining int) {
			if remaining > 0 {
				a.state.CountdownTick(ui.PhaseRecording, remaining)
			} else {
				a.state.CountdownTick(ui.PhaseDone, 0)
			}
		},
		func() {},
	)

	_, err := a.runner.Start(domain.JobKindRecording,
		func(ctx context.Context) (any, error) {
			return a.microphone.Record(ctx)
		},
		a.recordingSucceeded,
		a.recordingFailed,
	)
	if err != nil {
		a.countdown.Cancel()
		a.state.CloseCountdown()
		a.state.RecordingFailed(err.Error())
	}
}

// recordingSucceeded runs on the dispatch loop. The dialog lingers briefly on
// "Done" and the fresh take is then loaded as the session voice sample.
func (a *App) recordingSucceeded(result any) {
	recording := result.(audio.Recording)
	a.countdown.Cancel()

	a.loop.PostAfter(a.closeDelay, a.state.CloseCountdown)
	a.loop.PostAfter(a.autoDelay, func() {
		label := "Recorded " + a.now().Format("15:04:05")
		if err := a.loadSample(recording.Path, label, a.state.RecordingFinished); err != nil {
			a.state.RecordingFailed(err.Error())
		}
	})
}

// recordingFailed runs on the dispatch loop.
func (a *App) recordingFailed(failure *domain.AppError) {
	a.countdown.Cancel()
	a.state.CloseCountdown()
	a.state.RecordingFailed(failure.Message)
}

// Generate synthesizes speech from the session voice sample and given text.
func (a *App) Generate(req GenerateRequest) error {
	var err error
	a.loop.Do(func() { err = a.generate(req) })
	return err
}

// generate runs on the dispatch loop. Rejections are synchronous and in a
// fixed order so the user always sees the most actionable problem first.
func (a *App) generate(req GenerateRequest) error {
	if a.runner.Busy() || a.preRoll.Active() {
		return busyError()
	}
	if !a.modelReady {
		return domain.E(domain.ErrResourceNotFound, "the model is not loaded")
	}
	if a.session.VoiceSamplePath == "" {
		return domain.E(domain.ErrValidationFailed, "load a voice sample or record one first")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.E(domain.ErrValidationFailed, "enter some text to speak")
	}

	params := domain.GenerationParams{}
	if a.state.Mode() == ui.ModeAdvanced {
		params = req.Params
		if err := params.Validate(); err != nil {
			return err
		}
	}

	outputDir := a.currentSettings().OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return domain.Wrap(domain.ErrUnknown, "cannot create output directory", err)
	}
	outPath := filepath.Join(outputDir, fmt.Sprintf("output_%d.wav", a.now().Unix()))

	inferReq := model.InferRequest{
		SamplePath: a.session.VoiceSamplePath,
		Text:       text,
		OutputPath: outPath,
		Params:     params,
	}
	handle := a.modelHandle

	_, err := a.runner.Start(domain.JobKindSynthesis,
		func(ctx context.Context) (any, error) {
			if err := a.models.Infer(ctx, handle, inferReq); err != nil {
				return nil, err
			}
			return outPath, nil
		},
		func(result any) {
			a.stopIndicator()
			a.session.GeneratedAudioPath = result.(string)
			a.state.GenerationSucceeded(filepath.Base(a.session.GeneratedAudioPath))
			// Auto-play is best effort; a broken player never fails the run.
			_ = a.player.Play(a.session.GeneratedAudioPath)
		},
		func(failure *domain.AppError) {
			a.stopIndicator()
			a.state.GenerationFailed(failure.Message)
		},
	)
	if err != nil {
		return err
	}

	a.state.GenerationStarted()
	a.startIndicator()
	return nil
}

// ToggleMode switches between easy and advanced parameter modes.
func (a *App) ToggleMode() string {
	var mode ui.Mode
	a.loop.Do(func() {
		mode = a.state.ModeToggled()
		a.session.AdvancedMode = mode == ui.ModeAdvanced
	})
	return string(mode)
}

// PlaySample plays the current voice sample.
func (a *App) PlaySample() error {
	var err error
	a.loop.Do(func() {
		if a.session.VoiceSamplePath == "" {
			err = domain.E(domain.ErrValidationFailed, "no voice sample is loaded")
			return
		}
		err = a.player.Play(a.session.VoiceSamplePath)
	})
	return err
}

// PlayGenerated plays the most recently generated audio.
func (a *App) PlayGenerated() error {
	var err error
	a.loop.Do(func() {
		if a.session.GeneratedAudioPath == "" {
			err = domain.E(domain.ErrValidationFailed, "nothing has been generated yet")
			return
		}
		err = a.player.Play(a.session.GeneratedAudioPath)
	})
	return err
}

// startIndicator begins cycling the animated progress caption.
func (a *App) startIndicator() {
	a.indicatorOn = true
	a.indicatorIdx = 0
	a.stepIndicator()
}

func (a *App) stepIndicator() {
	if !a.indicatorOn {
		return
	}
	a.state.IndicatorFrame(indicatorFrames[a.indicatorIdx%len(indicatorFrames)])
	a.indicatorIdx++
	a.loop.PostAfter(a.indicatorTick, a.stepIndicator)
}

func (a *App) stopIndicator() {
	a.indicatorOn = false
}

func (a *App) currentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// runtimeContext returns the current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

func busyError() *domain.AppError {
	return domain.E(domain.ErrBusy, "another operation is in progress")
}

// normalizeSettings trims whitespace and fills blanks with defaults.
func normalizeSettings(settings domain.Settings) domain.Settings {
	defaults := config.DefaultSettings()

	settings.ModelDir = strings.TrimSpace(settings.ModelDir)
	settings.RecordingsDir = strings.TrimSpace(settings.RecordingsDir)
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.PlaybackCommand = strings.TrimSpace(settings.PlaybackCommand)

	if settings.RecordingsDir == "" {
		settings.RecordingsDir = defaults.RecordingsDir
	}
	if settings.OutputDir == "" {
		settings.OutputDir = defaults.OutputDir
	}
	return settings
}

// NewForTests wires the full loop, runner, and state machine around fake
// collaborators. The dispatch loop is started; callers drive the lifecycle
// through Bootstrap and the bound methods.
func NewForTests(
	store config.Store,
	settings domain.Settings,
	models modelService,
	samples sampleValidator,
	mic microphone,
	player audioPlayer,
	now func() time.Time,
) *App {
	app := newApp(store, settings, nil, nil)
	app.models = models
	app.samples = samples
	app.microphone = mic
	app.player = player
	if now != nil {
		app.now = now
	}
	return app
}
