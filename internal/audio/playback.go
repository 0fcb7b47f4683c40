package audio

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Player launches the platform audio player without waiting for it. Playback
// is cosmetic; callers treat failures as non-fatal.
type Player struct {
	command string
	goos    string
	start   func(name string, args ...string) error
}

// NewPlayer constructs a player. A non-empty commandOverride replaces the
// platform default and receives the file path as its only argument.
func NewPlayer(commandOverride string) *Player {
	return &Player{
		command: commandOverride,
		goos:    runtime.GOOS,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Play starts playback of the given file and returns immediately.
func (p *Player) Play(path string) error {
	name, args := p.launcher(path)
	if err := p.start(name, args...); err != nil {
		return fmt.Errorf("launch audio playback: %w", err)
	}
	return nil
}

func (p *Player) launcher(path string) (string, []string) {
	if p.command != "" {
		return p.command, []string{path}
	}
	switch p.goos {
	case "darwin":
		return "afplay", []string{path}
	case "windows":
		return "powershell", []string{
			"-NoProfile",
			"-Command",
			fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", path),
		}
	default:
		return "aplay", []string{path}
	}
}

// NewPlayerForTests constructs a player with an injectable process starter.
func NewPlayerForTests(commandOverride, goos string, start func(string, ...string) error) *Player {
	return &Player{command: commandOverride, goos: goos, start: start}
}
