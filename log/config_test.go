package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	c := apply(config{},
		WithLevel(LevelTrace),
		WithFormat(FormatText),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelTrace || c.format != FormatText || !c.caller || c.pretty {
		t.Errorf("expected options applied in order, got %+v", c)
	}

	if c.output != nil {
		t.Errorf("expected output untouched, got %v", c.output)
	}

	if c = WithOutput(nil)(c); c.output == nil {
		t.Error("expected nil output replaced by io.Discard")
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelTrace + 2, "trace+2"},
		{LevelTrace - 1, "trace-1"},
		{LevelInfo + 2, "info+2"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"verbose", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" TEXT ", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if got := Format(7).String(); got != "format(7)" {
		t.Errorf("expected format(7), got %q", got)
	}

	want := []string{"json", "text"}
	if got := slices.Collect(Formats()); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name        string
		layout      string
		contains    []string
		notContains []string
	}{
		{
			name:        "rfc3339 named layout",
			layout:      "RFC3339",
			contains:    []string{"2023-10-15T14:30:45Z"},
			notContains: []string{".123", ".456", ".789"},
		},
		{
			name:     "rfc3339 nano named layout",
			layout:   "RFC3339Nano",
			contains: []string{"2023-10-15T14:30:45.123456789Z"},
		},
		{
			name:     "short alias",
			layout:   "ms",
			contains: []string{"Oct 15 14:30:45.123"},
		},
		{
			name:     "custom layout used verbatim",
			layout:   "   2006-01-02 15:04:05.000Z07:00",
			contains: []string{"   2023-10-15 14:30:45.123Z"},
		},
		{
			name:     "unknown named layout is a literal layout",
			layout:   "UNKNOWN_FORMAT",
			contains: []string{"UNKNOWN_FORMAT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := WithTimeLayout(tt.layout)(config{})
			result := c.formatTime(now)

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected %q to contain %q", result, s)
				}
			}

			for _, s := range tt.notContains {
				if strings.Contains(result, s) {
					t.Errorf("expected %q not to contain %q", result, s)
				}
			}
		})
	}
}

func TestConfig_formatTime_EmptyFormat_DisablesTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	for _, layout := range []string{"", "   \t  ", "none"} {
		c := WithTimeLayout(layout)(config{})

		if result := c.formatTime(now); result != "" {
			t.Errorf("expected empty timestamp when layout is %q, got %q", layout, result)
		}
	}
}

func BenchmarkConfig_formatTime_SecondResolution(b *testing.B) {
	c := WithTimeLayout("RFC3339")(config{})
	testTime := time.Now()

	for b.Loop() {
		_ = c.formatTime(testTime)
	}
}

func BenchmarkConfig_formatTime_NanosecondResolution(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	testTime := time.Now()

	for b.Loop() {
		_ = c.formatTime(testTime)
	}
}
