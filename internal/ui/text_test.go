package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// Formatter tests mutate color.NoColor and NO_COLOR, so none run in parallel.

func TestFormatterWithColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	result := Code.Sprint("aws-secrets init")
	assert.NotContains(t, result, "`")
	assert.Contains(t, result, "\x1b[")
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"code_adds_backticks", Code, "aws-secrets init", "`aws-secrets init`"},
		{"path_plain", Path, ".env", ".env"},
		{"key_plain", Key, "API_KEY", "API_KEY"},
		{"added_plain", Added, "+", "+"},
		{"changed_plain", Changed, "~", "~"},
		{"removed_plain", Removed, "-", "-"},
		{"muted_parenthesized", Muted, "dry run", "(dry run)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.formatter.Sprint(tt.input))
		})
	}

	assert.Equal(t, "`aws-secrets sync -m merge`", Code.Sprintf("aws-secrets sync -m %s", "merge"))
	assert.True(t, NoColor())
}

func TestDisableColor(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	color.NoColor = false
	DisableColor()
	assert.True(t, color.NoColor)
	assert.Equal(t, "(x)", Muted.Sprint("x"))
}

func TestDisabledSpinnerIsNoop(t *testing.T) {
	var buf bytes.Buffer

	sp := StartSpinner(&buf, false, "Fetching secrets...")
	assert.False(t, sp.Active())
	sp.Stop()
	assert.Empty(t, buf.String())

	var nilSpinner *Spinner
	nilSpinner.Stop()
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer

	sp := StartSpinner(&buf, true, "Fetching secrets...")
	sp.Stop()
	assert.False(t, sp.Active())
}
