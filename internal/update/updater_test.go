package update

import "testing"

func TestIsDisabled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "unset", value: "", want: false},
		{name: "one", value: "1", want: true},
		{name: "true", value: "true", want: true},
		{name: "true uppercase", value: "TRUE", want: true},
		{name: "zero", value: "0", want: false},
		{name: "false", value: "false", want: false},
		{name: "garbage", value: "yes", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FMELINK_UPDATE_DISABLED", tt.value)

			if got := IsDisabled(); got != tt.want {
				t.Errorf("IsDisabled() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNewUpdater(t *testing.T) {
	u, err := NewUpdater()
	if err != nil {
		t.Fatalf("NewUpdater() error = %v", err)
	}
	if u == nil || u.updater == nil {
		t.Fatal("NewUpdater() returned nil updater")
	}
}
