package config

import "testing"

func TestOutputPath(t *testing.T) {
	t.Setenv("FINCH_SIM_OUTPUT", "")
	if got := OutputPath(); got != DefaultOutputPath {
		t.Errorf("default: got %q", got)
	}
	t.Setenv("FINCH_SIM_OUTPUT", "/tmp/star.png")
	if got := OutputPath(); got != "/tmp/star.png" {
		t.Errorf("override: got %q", got)
	}
}

func TestSVGPath(t *testing.T) {
	tests := map[string]string{
		"finch_sim_output.png": "finch_sim_output.svg",
		"/tmp/a.b/c.png":       "/tmp/a.b/c.svg",
		"noext":                "noext.svg",
	}
	for in, want := range tests {
		if got := SVGPath(in); got != want {
			t.Errorf("SVGPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestViewerPortAndLogLevel(t *testing.T) {
	t.Setenv("FINCH_VIEWER_PORT", "")
	t.Setenv("FINCH_LOG_LEVEL", "")
	if ViewerPort() != DefaultViewerPort || LogLevel() != DefaultLogLevel {
		t.Error("expected defaults")
	}
	t.Setenv("FINCH_VIEWER_PORT", "9000")
	t.Setenv("FINCH_LOG_LEVEL", "debug")
	if ViewerPort() != "9000" || LogLevel() != "debug" {
		t.Error("expected overrides")
	}
}

func TestWheelbase(t *testing.T) {
	tests := []struct {
		env  string
		want float64
	}{
		{"", DefaultWheelbase},
		{"12.5", 12.5},
		{"-3", DefaultWheelbase},
		{"wide", DefaultWheelbase},
	}
	for _, tt := range tests {
		t.Setenv("FINCH_WHEELBASE_CM", tt.env)
		if got := Wheelbase(); got != tt.want {
			t.Errorf("FINCH_WHEELBASE_CM=%q: got %v, want %v", tt.env, got, tt.want)
		}
	}
}
