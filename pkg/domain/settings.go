package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Well-known setting keys. Routines mutate these through '$' lines; the
// engine and pathfinder read them every tick.
const (
	SettingMoveTolerance   = "move_tolerance"
	SettingAdjustTolerance = "adjust_tolerance"
	SettingRecordLayout    = "record_layout"
	SettingMoveAttempts    = "move_attempts"
	SettingCommandCooldown = "command_cooldown"
)

// DefaultSettings returns the baseline settings mapping.
func DefaultSettings() Settings {
	return Settings{
		SettingMoveTolerance:   0.075,
		SettingAdjustTolerance: 0.01,
		SettingRecordLayout:    false,
		SettingMoveAttempts:    15,
		SettingCommandCooldown: 0.05,
	}
}

// Settings is the mutable configuration mapping owned by the execution
// context. The engine is its only writer; collaborators receive decoded
// read-only snapshots.
type Settings map[string]any

// ValidateSetting checks that key is known and value has the expected type,
// returning the value normalized to the canonical type.
func ValidateSetting(key string, value any) (any, error) {
	switch key {
	case SettingMoveTolerance, SettingAdjustTolerance, SettingCommandCooldown:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("setting %q: expected float, got %T", key, value)
		}
		if f < 0 {
			return nil, fmt.Errorf("setting %q: must be non-negative", key)
		}
		return f, nil
	case SettingMoveAttempts:
		f, ok := toFloat(value)
		if !ok || f != float64(int(f)) {
			return nil, fmt.Errorf("setting %q: expected int, got %v", key, value)
		}
		if f < 1 {
			return nil, fmt.Errorf("setting %q: must be >= 1", key)
		}
		return int(f), nil
	case SettingRecordLayout:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("setting %q: expected bool, got %T", key, value)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown setting %q", key)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// SettingsSnapshot is the typed, read-only view handed to command handlers
// and the movement loop. Field names match the setting keys.
type SettingsSnapshot struct {
	MoveTolerance   float64 `mapstructure:"move_tolerance"`
	AdjustTolerance float64 `mapstructure:"adjust_tolerance"`
	RecordLayout    bool    `mapstructure:"record_layout"`
	MoveAttempts    int     `mapstructure:"move_attempts"`
	CommandCooldown float64 `mapstructure:"command_cooldown"`
}

// Snapshot decodes the mapping into a typed snapshot.
func (s Settings) Snapshot() (SettingsSnapshot, error) {
	var snap SettingsSnapshot
	if err := mapstructure.Decode(map[string]any(s), &snap); err != nil {
		return SettingsSnapshot{}, fmt.Errorf("decode settings: %w", err)
	}
	return snap, nil
}

// Clone returns a shallow copy of the mapping.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
