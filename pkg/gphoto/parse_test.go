package gphoto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToggle(t *testing.T) {
	tests := map[string]Toggle{
		"on": ToggleTrue, "TRUE": ToggleTrue, "1": ToggleTrue,
		"off": ToggleFalse, "false": ToggleFalse, "0": ToggleFalse,
		"unknown": ToggleUnknown, "2": ToggleUnknown,
	}
	for in, want := range tests {
		got, err := ParseToggle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseToggle("maybe")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1714564800), d.Unix())

	d, err = ParseDate("1714564800")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Unix(1714564800, 0)))

	_, err = ParseDate("yesterday")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSetFromString(t *testing.T) {
	sim, _, cam := openSim(t)

	tests := []struct {
		key, in string
		want    any
	}{
		{"artist", "Ada", "Ada"},
		{"zoom", "42", float64(42)},
		{"autofocusdrive", "on", ToggleTrue},
		{"iso", "1600", "1600"},
		{"iso", "#1", "100"},
		{"focusmode", "AI Servo", "AI Servo"},
		{"datetime", "1700000000", time.Unix(1700000000, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.in, func(t *testing.T) {
			w := configKey(t, cam, tt.key)
			require.NoError(t, SetFromString(w, tt.in))
			got, err := w.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	require.NoError(t, SetFromString(configKey(t, cam, "resetsettings"), ""))
	assert.Equal(t, []string{"resetsettings"}, sim.Presses())

	assert.ErrorIs(t, SetFromString(configKey(t, cam, "zoom"), "far"), ErrTypeMismatch)
	assert.ErrorIs(t, SetFromString(configKey(t, cam, "iso"), "#x"), ErrInvalidChoice)
	assert.ErrorIs(t, SetFromString(configKey(t, cam, "iso"), "#99"), ErrInvalidChoice)
	assert.ErrorIs(t, SetFromString(configKey(t, cam, "zoom"), "0.5"), ErrOutOfRange)
	assert.ErrorIs(t, SetFromString(configKey(t, cam, "settings"), "x"), ErrWrongWidgetType)
}
