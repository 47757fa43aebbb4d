package presentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sigtrack/internal/broadcast"
	"github.com/zjrosen/sigtrack/internal/signals"
)

func sampleSignals() []signals.SavedSignal {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	delay := 12
	return []signals.SavedSignal{
		{GUID: "0f8fad5b-d9cb-469f-a165-70867728950e", Text: "101,202\n303", CreatedAt: at, Timestamp: at},
		{GUID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Text: strings.Repeat("x", 200), Antidelay: &delay,
			CreatedAt: at, Timestamp: at.Add(-12 * time.Second)},
	}
}

func TestFormatJSON_Signals(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).FormatJSON(FromSignals(sampleSignals())))

	var out []SignalDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	require.Nil(t, out[0].Antidelay)
	require.Equal(t, 12, *out[1].Antidelay)
	require.NotContains(t, buf.String()[:strings.Index(buf.String(), "}")], "antidelay")
}

func TestFormatJSON_EmptyListIsArray(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).FormatJSON(FromSignals(nil)))

	require.Equal(t, "[]\n", buf.String())
}

func TestFormatSignalTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).WithWidth(60).FormatSignalTable(FromSignals(sampleSignals())))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	require.Contains(t, lines[0], "0f8fad5b")
	require.Contains(t, lines[0], "101,202 303")
	require.NotContains(t, lines[0], "…")

	require.Contains(t, lines[1], "-12s")
	require.True(t, strings.HasSuffix(lines[1], "…"))
	require.LessOrEqual(t, ansi.StringWidth(lines[1]), 60)
}

func TestFormatSignalTable_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).FormatSignalTable(nil))

	require.Equal(t, "No saved signals.\n", buf.String())
}

func TestFormatSignal(t *testing.T) {
	var buf bytes.Buffer
	s := FromSignal(sampleSignals()[1])

	require.NoError(t, NewFormatter(&buf).FormatSignal(s))

	out := buf.String()
	require.Contains(t, out, "GUID:       7c9e6679-7425-40de-944b-e07fc1f90ae7")
	require.Contains(t, out, "Antidelay:  12s")
	require.Contains(t, out, strings.Repeat("x", 200))
}

func TestFormatIntentTable(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	attempts := []broadcast.Attempt{
		{Action: "com.tasker.RING_OFF", Path: broadcast.PathPlatform, Success: true, At: at},
		{Action: "com.tasker.SCREEN_OFF", Path: broadcast.PathNone, Success: false, Err: errors.New("no opener"), At: at},
	}

	dtos := FromAttempts(attempts)
	require.Equal(t, "no opener", dtos[1].Error)
	require.NoError(t, NewFormatter(&buf).FormatIntentTable(dtos))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "ok")
	require.Contains(t, lines[0], "platform")
	require.Contains(t, lines[0], "com.tasker.RING_OFF")
	require.Contains(t, lines[1], "failed")
}

func TestFormatIntentTable_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewFormatter(&buf).FormatIntentTable(nil))

	require.Equal(t, "No intents sent.\n", buf.String())
}
