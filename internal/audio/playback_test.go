package audio

import (
	"errors"
	"testing"
)

func TestPlayerPlatformDefaults(t *testing.T) {
	cases := []struct {
		goos string
		name string
	}{
		{"darwin", "afplay"},
		{"linux", "aplay"},
		{"windows", "powershell"},
	}
	for _, tc := range cases {
		var gotName string
		var gotArgs []string
		player := NewPlayerForTests("", tc.goos, func(name string, args ...string) error {
			gotName = name
			gotArgs = args
			return nil
		})
		if err := player.Play("out.wav"); err != nil {
			t.Fatalf("%s: Play: %v", tc.goos, err)
		}
		if gotName != tc.name {
			t.Fatalf("%s: launched %q, want %q", tc.goos, gotName, tc.name)
		}
		if len(gotArgs) == 0 {
			t.Fatalf("%s: no arguments passed", tc.goos)
		}
	}
}

func TestPlayerCommandOverride(t *testing.T) {
	var gotName string
	var gotArgs []string
	player := NewPlayerForTests("mpv", "linux", func(name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})
	if err := player.Play("out.wav"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if gotName != "mpv" {
		t.Fatalf("launched %q, want the override", gotName)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "out.wav" {
		t.Fatalf("args = %v, want just the file path", gotArgs)
	}
}

func TestPlayerReportsLaunchFailure(t *testing.T) {
	player := NewPlayerForTests("", "linux", func(string, ...string) error {
		return errors.New("no such binary")
	})
	if err := player.Play("out.wav"); err == nil {
		t.Fatal("expected a launch error")
	}
}
