package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shelbeely/Conductor-sub001/llm"
	"github.com/shelbeely/Conductor-sub001/player"
)

// PlayInput defines the arguments for the play tool.
type PlayInput struct {
	Position *int `json:"position,omitempty" jsonschema:"description=Queue position to start from (0-based); omit to resume"`
}

// Play returns the play tool.
func Play(p player.Player) llm.Tool {
	return llm.NewTool(
		"play",
		"Start or resume playback, optionally from a queue position.",
		func(ctx context.Context, in PlayInput) (string, error) {
			pos := -1
			if in.Position != nil {
				pos = *in.Position
			}
			if err := p.Play(ctx, pos); err != nil {
				return "", fmt.Errorf("starting playback: %w", err)
			}
			if pos >= 0 {
				return fmt.Sprintf("Playing from queue position %d.", pos), nil
			}
			return "Playback started.", nil
		},
	).WithCheck(func(in PlayInput) error {
		if in.Position != nil && *in.Position < 0 {
			return fmt.Errorf("position must not be negative, got %d", *in.Position)
		}
		return nil
	})
}

// ControlInput defines the arguments for the control_playback tool.
type ControlInput struct {
	Action      string `json:"action" jsonschema:"required,description=One of pause / stop / next / previous / seek"`
	SeekSeconds *int   `json:"seek_seconds,omitempty" jsonschema:"description=Absolute offset in seconds (required when action is seek)"`
}

// ControlPlayback returns the control_playback tool.
func ControlPlayback(p player.Player) llm.Tool {
	return llm.NewTool(
		"control_playback",
		"Control the playback transport: pause, stop, next, previous, or seek.",
		func(ctx context.Context, in ControlInput) (string, error) {
			var err error
			switch strings.ToLower(in.Action) {
			case "pause":
				err = p.Pause(ctx)
			case "stop":
				err = p.Stop(ctx)
			case "next":
				err = p.Next(ctx)
			case "previous":
				err = p.Previous(ctx)
			case "seek":
				err = p.Seek(ctx, time.Duration(*in.SeekSeconds)*time.Second)
			}
			if err != nil {
				return "", fmt.Errorf("%s: %w", in.Action, err)
			}
			return fmt.Sprintf("Done: %s.", strings.ToLower(in.Action)), nil
		},
	).WithCheck(func(in ControlInput) error {
		switch strings.ToLower(in.Action) {
		case "pause", "stop", "next", "previous":
			return nil
		case "seek":
			if in.SeekSeconds == nil {
				return fmt.Errorf("seek requires seek_seconds")
			}
			if *in.SeekSeconds < 0 {
				return fmt.Errorf("seek_seconds must not be negative, got %d", *in.SeekSeconds)
			}
			return nil
		default:
			return fmt.Errorf("action must be one of pause, stop, next, previous, seek; got %q", in.Action)
		}
	})
}

// VolumeInput defines the arguments for the set_volume tool.
type VolumeInput struct {
	Level int `json:"level" jsonschema:"required,description=Volume percentage between 0 and 100"`
}

// SetVolume returns the set_volume tool.
func SetVolume(p player.Player) llm.Tool {
	return llm.NewTool(
		"set_volume",
		"Set the playback volume to a percentage between 0 and 100.",
		func(ctx context.Context, in VolumeInput) (string, error) {
			if err := p.SetVolume(ctx, in.Level); err != nil {
				return "", fmt.Errorf("setting volume: %w", err)
			}
			return fmt.Sprintf("Volume set to %d%%.", in.Level), nil
		},
	).WithCheck(func(in VolumeInput) error {
		if in.Level < 0 || in.Level > 100 {
			return fmt.Errorf("level must be between 0 and 100, got %d", in.Level)
		}
		return nil
	})
}

// ToggleInput defines the arguments for the toggle_setting tool.
type ToggleInput struct {
	Setting string `json:"setting" jsonschema:"required,description=One of repeat / random / single / consume"`
	Enabled bool   `json:"enabled" jsonschema:"description=True to enable the setting"`
}

var settings = map[string]player.Setting{
	"repeat":  player.SettingRepeat,
	"random":  player.SettingRandom,
	"single":  player.SettingSingle,
	"consume": player.SettingConsume,
}

// ToggleSetting returns the toggle_setting tool.
func ToggleSetting(p player.Player) llm.Tool {
	return llm.NewTool(
		"toggle_setting",
		"Enable or disable a playback setting: repeat, random, single, or consume.",
		func(ctx context.Context, in ToggleInput) (string, error) {
			if err := p.SetSetting(ctx, settings[strings.ToLower(in.Setting)], in.Enabled); err != nil {
				return "", fmt.Errorf("toggling %s: %w", in.Setting, err)
			}
			state := "disabled"
			if in.Enabled {
				state = "enabled"
			}
			return fmt.Sprintf("Setting %s %s.", strings.ToLower(in.Setting), state), nil
		},
	).WithCheck(func(in ToggleInput) error {
		if _, ok := settings[strings.ToLower(in.Setting)]; !ok {
			return fmt.Errorf("setting must be one of repeat, random, single, consume; got %q", in.Setting)
		}
		return nil
	})
}
