package domain

import "testing"

func TestValidateSetting(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   any
		want    any
		wantErr bool
	}{
		{name: "float ok", key: SettingMoveTolerance, value: 0.1, want: 0.1},
		{name: "int widens to float", key: SettingMoveTolerance, value: 1, want: 1.0},
		{name: "negative tolerance", key: SettingMoveTolerance, value: -0.1, wantErr: true},
		{name: "attempts ok", key: SettingMoveAttempts, value: 20, want: 20},
		{name: "attempts from whole float", key: SettingMoveAttempts, value: 20.0, want: 20},
		{name: "attempts fractional", key: SettingMoveAttempts, value: 2.5, wantErr: true},
		{name: "attempts below one", key: SettingMoveAttempts, value: 0, wantErr: true},
		{name: "bool ok", key: SettingRecordLayout, value: true, want: true},
		{name: "bool from string", key: SettingRecordLayout, value: "true", wantErr: true},
		{name: "unknown key", key: "warp_speed", value: 1, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateSetting(tc.key, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tc.want, tc.want)
			}
		})
	}
}

func TestSettingsSnapshotDecodesDefaults(t *testing.T) {
	snap, err := DefaultSettings().Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MoveTolerance != 0.075 {
		t.Errorf("MoveTolerance = %v", snap.MoveTolerance)
	}
	if snap.AdjustTolerance != 0.01 {
		t.Errorf("AdjustTolerance = %v", snap.AdjustTolerance)
	}
	if snap.MoveAttempts != 15 {
		t.Errorf("MoveAttempts = %v", snap.MoveAttempts)
	}
	if snap.RecordLayout {
		t.Error("RecordLayout should default to false")
	}
	if snap.CommandCooldown != 0.05 {
		t.Errorf("CommandCooldown = %v", snap.CommandCooldown)
	}
}

func TestSettingsCloneIsIndependent(t *testing.T) {
	orig := DefaultSettings()
	clone := orig.Clone()
	clone[SettingMoveTolerance] = 0.5
	if orig[SettingMoveTolerance] == 0.5 {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestDirectionToward(t *testing.T) {
	from := Position{X: 0.5, Y: 0.5}
	if got := from.DirectionToward(Position{X: 0.9, Y: 0.6}); got != DirRight {
		t.Errorf("dominant +x = %v", got)
	}
	if got := from.DirectionToward(Position{X: 0.45, Y: 0.1}); got != DirUp {
		t.Errorf("dominant -y = %v", got)
	}
}
