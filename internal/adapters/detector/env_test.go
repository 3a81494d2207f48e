package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/unitcache/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  detector.OutputMode
	}{
		{"terminal", true, "", detector.ModeProgress},
		{"terminal with CI=false", true, "false", detector.ModeProgress},
		{"terminal in CI=true", true, "true", detector.ModeQuiet},
		{"terminal in CI=1", true, "1", detector.ModeQuiet},
		{"pipe", false, "", detector.ModeQuiet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeQuiet, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag string
		auto detector.OutputMode
		want detector.OutputMode
	}{
		{"", detector.ModeProgress, detector.ModeProgress},
		{"auto", detector.ModeQuiet, detector.ModeQuiet},
		{"progress", detector.ModeQuiet, detector.ModeProgress},
		{"quiet", detector.ModeProgress, detector.ModeQuiet},
		{"ci", detector.ModeProgress, detector.ModeQuiet},
		{"tui", detector.ModeQuiet, detector.ModeTUI},
		{"bogus", detector.ModeProgress, detector.ModeProgress},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.auto, tt.flag))
		})
	}
}
