package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/pubsub"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/testutil"
	"github.com/zjrosen/sigtrack/internal/ui/modal"
	"github.com/zjrosen/sigtrack/internal/ui/picker"
	"github.com/zjrosen/sigtrack/internal/ui/toaster"
	"github.com/zjrosen/sigtrack/internal/watcher"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time         { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type sentIntents struct {
	mu      sync.Mutex
	actions []string
	result  bool
}

func (s *sentIntents) SendIntent(_ context.Context, action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return s.result
}

type fixture struct {
	svc        *signals.Service
	clock      *fakeClock
	intents    *sentIntents
	configPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(configPath))

	return &fixture{
		svc:        testutil.NewTestService(db),
		clock:      &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
		intents:    &sentIntents{result: true},
		configPath: configPath,
	}
}

func (f *fixture) model(t *testing.T, mutate func(*Options)) Model {
	t.Helper()
	cfg := config.Defaults()
	cfg.Antidelay.LastSeconds = 3
	cfg.Antidelay.LongPressMs = 500
	opts := Options{
		Config:     cfg,
		ConfigPath: f.configPath,
		Store:      f.svc,
		Dispatcher: f.intents,
		Clock:      f.clock,
	}
	if mutate != nil {
		mutate(&opts)
	}
	m := New(opts)
	t.Cleanup(func() { _ = m.Close() })
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// exec runs cmd, which must be a single non-batched command.
func exec(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func TestTyping_RecordsEveryEdit(t *testing.T) {
	m := newFixture(t).model(t, nil)

	m = typeText(t, m, "abc")

	require.Equal(t, "abc", m.Text())
	require.Equal(t, []string{"", "a", "ab", "abc"}, m.History().Entries())
	require.Equal(t, 3, m.History().Cursor())
}

func TestUndoRedoClear(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "ab", m.Text())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "a", m.Text())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, "ab", m.Text())

	// A new edit after undo truncates the redo branch.
	m = typeText(t, m, "x")
	require.Equal(t, "abx", m.Text())
	require.False(t, m.History().CanRedo())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, "", m.Text())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "abx", m.Text(), "clear is undoable")
}

func TestUndo_AtStartIsNoop(t *testing.T) {
	m := newFixture(t).model(t, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Nil(t, cmd)
	require.Equal(t, "", m.Text())
	require.Equal(t, 1, m.History().Len())
}

func TestInitialText_SeedsHistory(t *testing.T) {
	m := newFixture(t).model(t, func(o *Options) { o.InitialText = "seed" })

	require.Equal(t, "seed", m.Text())
	require.Equal(t, []string{"", "seed"}, m.History().Entries())
}

func TestSave_CommitsWithoutAntidelay(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "hello")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	msg := exec(t, cmd)
	saved, ok := msg.(savedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, saved.err)

	m, _ = update(t, m, msg)
	require.Equal(t, flashSave, m.flash)
	require.True(t, m.toaster.Visible())
	require.Contains(t, m.toaster.Message(), "Saved")
	require.Contains(t, plainView(m), "saved |")

	list, err := f.svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "hello", list[0].Text)
	require.Nil(t, list[0].Antidelay)
	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
}

func TestSave_EmptyTextWarns(t *testing.T) {
	m := newFixture(t).model(t, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, exec(t, cmd))

	require.Equal(t, "Nothing to save", m.toaster.Message())
	require.Equal(t, flashNone, m.flash)
}

func TestFlash_ClearsOnlyForLatestID(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "x")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, exec(t, cmd))
	require.Equal(t, flashSave, m.flash)

	m, _ = update(t, m, flashDoneMsg{id: m.flashID - 1})
	require.Equal(t, flashSave, m.flash)

	m, _ = update(t, m, flashDoneMsg{id: m.flashID})
	require.Equal(t, flashNone, m.flash)
}

func TestSaveTS_KeyboardOpensPromptPrefilled(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	require.True(t, m.promptOpen)
	require.Equal(t, antidelay.StateAwaitingDelay, m.Coordinator().State())
	require.Equal(t, "abc", m.Coordinator().Pending())
	require.Equal(t, "3", m.prompt.Value(delayInputKey))
	require.Contains(t, plainView(m), "How many seconds ago")
}

func TestSaveTS_InvalidDelayKeepsPromptOpen(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: "abc"}})

	require.Nil(t, cmd)
	require.True(t, m.promptOpen)
	require.NotEmpty(t, m.prompt.Error())
	require.Equal(t, antidelay.StateAwaitingDelay, m.Coordinator().State())
	require.Contains(t, plainView(m), "whole number")

	n, err := f.svc.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSaveTS_ValidDelayCommitsOnce(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "101,202,303")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: " 5 "}})
	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.StateCommitting, m.Coordinator().State())

	// A second confirm while committing is refused.
	m, again := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: "5"}})
	require.Nil(t, again)

	msg := exec(t, cmd)
	m, _ = update(t, m, msg)

	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
	require.Equal(t, 5, m.Coordinator().LastDelay())
	require.Equal(t, flashSaveTS, m.flash)

	list, err := f.svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "101,202,303", list[0].Text)
	require.NotNil(t, list[0].Antidelay)
	require.Equal(t, 5, *list[0].Antidelay)
	require.Equal(t, list[0].CreatedAt.Add(-5*time.Second), list[0].Timestamp)
}

func TestSaveTS_FailedCommitReturnsToIdle(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: "2"}})
	m, _ = update(t, m, exec(t, cmd))

	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
	require.Equal(t, "Nothing to save", m.toaster.Message())
	require.Equal(t, flashNone, m.flash)
}

// awaitMsg runs every command in cmd's batch and returns the first message
// of type T.
func awaitMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	first := cmd()
	if got, ok := first.(T); ok {
		return got
	}
	batch, ok := first.(tea.BatchMsg)
	require.True(t, ok, "got %T", first)
	cmds := []tea.Cmd(batch)
	ch := make(chan tea.Msg, len(cmds)+1)
	for _, c := range cmds {
		if c == nil {
			continue
		}
		go func() { ch <- c() }()
	}
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if got, ok := msg.(T); ok {
				return got
			}
		case <-timeout:
			var zero T
			t.Fatalf("no %T produced", zero)
			return zero
		}
	}
}

func TestSaveTS_FailedCommitStillPersistsDelay(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: "8"}})
	m, cmd = update(t, m, exec(t, cmd))
	require.Equal(t, 8, m.Coordinator().LastDelay())

	persisted := awaitMsg[delayPersistedMsg](t, cmd)
	require.NoError(t, persisted.err)
	require.Equal(t, 8, persisted.seconds)

	cfg, err := config.Load(f.configPath)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Antidelay.LastSeconds)
}

func TestSaveTS_StrayResultIsIgnored(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	m, cmd := update(t, m, delayedSavedMsg{})
	require.Nil(t, cmd)
	require.Equal(t, 3, m.Coordinator().LastDelay())
}

func TestSaveTS_NoStoreFailsThroughCoordinator(t *testing.T) {
	m := newFixture(t).model(t, func(o *Options) { o.Store = nil })
	m = typeText(t, m, "abc")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, modal.SubmitMsg{Values: map[string]string{delayInputKey: "1"}})
	msg := exec(t, cmd)
	saved, ok := msg.(delayedSavedMsg)
	require.True(t, ok, "got %T", msg)
	require.ErrorIs(t, saved.err, antidelay.ErrNoCommitter)

	m, _ = update(t, m, msg)
	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
	require.Contains(t, m.toaster.Message(), "Save failed")
}

func TestSaveTS_CancelDiscards(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	msg := exec(t, cmd)
	require.IsType(t, modal.CancelMsg{}, msg)
	m, _ = update(t, m, msg)

	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
	require.Equal(t, "abc", m.Text())

	n, err := f.svc.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPrompt_CapturesKeysWhileOpen(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "abc")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})

	require.Equal(t, "abc", m.Text(), "typing goes to the prompt, not the buffer")
	require.Equal(t, "37", m.prompt.Value(delayInputKey))
}

func TestPersistDelayCmd_WritesConfig(t *testing.T) {
	f := newFixture(t)

	msg := exec(t, persistDelayCmd(f.configPath, 12))
	persisted, ok := msg.(delayPersistedMsg)
	require.True(t, ok)
	require.NoError(t, persisted.err)

	cfg, err := config.Load(f.configPath)
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Antidelay.LastSeconds)

	require.Nil(t, persistDelayCmd("", 3))
}

func TestDelayPersistFailure_Warns(t *testing.T) {
	m := newFixture(t).model(t, nil)

	m, _ = update(t, m, delayPersistedMsg{seconds: 4, err: os.ErrPermission})
	require.Equal(t, "Could not remember antidelay", m.toaster.Message())
}

func TestBroadcast_KeySendsIntent(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	msg := exec(t, cmd)
	m, _ = update(t, m, msg)

	require.Equal(t, []string{"com.tasker.RING_OFF"}, f.intents.actions)
	require.Equal(t, "Sent Ring Off", m.toaster.Message())
	require.Equal(t, "", m.Text(), "broadcast keys do not edit the buffer")
}

func TestBroadcast_FailureToasts(t *testing.T) {
	f := newFixture(t)
	f.intents.result = false
	m := f.model(t, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlW})
	m, _ = update(t, m, exec(t, cmd))

	require.Equal(t, []string{"com.tasker.SCREEN_OFF"}, f.intents.actions)
	require.Equal(t, "Could not send Screen Off", m.toaster.Message())
}

func TestBroadcast_NoDispatcher(t *testing.T) {
	m := newFixture(t).model(t, func(o *Options) { o.Dispatcher = nil })

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, "Broadcasts are not configured", m.toaster.Message())
}

func TestSignalEvents_UpdateStatus(t *testing.T) {
	m := newFixture(t).model(t, nil)

	sig, err := signals.NewSavedSignal("g-1", "evt", nil, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	m, _ = update(t, m, pubsub.Event[signals.SavedSignal]{Type: pubsub.CreatedEvent, Payload: *sig})
	m, _ = update(t, m, pubsub.Event[signals.SavedSignal]{Type: pubsub.CreatedEvent, Payload: *sig})
	require.Equal(t, 2, m.savedCount)
	require.Contains(t, plainView(m), "2 saved")

	m, _ = update(t, m, pubsub.Event[signals.SavedSignal]{Type: pubsub.DeletedEvent, Payload: *sig})
	require.Equal(t, 1, m.savedCount)
}

func TestInit_LoadsCount(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Save(context.Background(), "earlier", nil)
	require.NoError(t, err)

	m := f.model(t, nil)
	m, _ = update(t, m, exec(t, countCmd(context.Background(), f.svc)))
	require.Equal(t, 1, m.savedCount)
}

func TestConfigReload_AppliesChanges(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	body := `antidelay:
  last_seconds: 9
  long_press_ms: 800
broadcast:
  actions:
    - name: Lights
      action: com.tasker.LIGHTS
      key: ctrl+g
`
	require.NoError(t, os.WriteFile(f.configPath, []byte(body), 0o600))

	m, _ = update(t, m, pubsub.Event[watcher.Event]{
		Type:    pubsub.UpdatedEvent,
		Payload: watcher.Event{Kind: watcher.ConfigChanged, Path: f.configPath},
	})

	require.Equal(t, 9, m.Coordinator().LastDelay())
	require.Equal(t, 800*time.Millisecond, m.gesture.Threshold())
	require.Len(t, m.actions, 1)
	require.Contains(t, plainView(m), "Lights")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	exec(t, cmd)
	require.Equal(t, []string{"com.tasker.LIGHTS"}, f.intents.actions)
}

func TestConfigReload_InvalidKeepsOldConfig(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	require.NoError(t, os.WriteFile(f.configPath, []byte("antidelay:\n  last_seconds: -1\n"), 0o600))

	m, _ = update(t, m, pubsub.Event[watcher.Event]{Payload: watcher.Event{Kind: watcher.ConfigChanged}})

	require.Equal(t, 3, m.Coordinator().LastDelay())
	require.Contains(t, m.toaster.Message(), "Config not reloaded")
}

func TestHelp_Toggle(t *testing.T) {
	m := newFixture(t).model(t, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	require.True(t, m.showHelp)
	require.Contains(t, plainView(m), "Keybindings")

	// Keys do not reach the buffer while help is up.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.Equal(t, "", m.Text())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.showHelp)
}

func TestToggleHistory(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "ab")
	require.Contains(t, plainView(m), "History")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.False(t, m.showHistory)
	require.NotContains(t, plainView(m), "▸")
}

func TestQuit(t *testing.T) {
	m := newFixture(t).model(t, nil)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.IsType(t, tea.QuitMsg{}, exec(t, cmd))
}

func TestView_ShowsControlsAndStatus(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m = typeText(t, m, "abc")

	view := plainView(m)
	for _, want := range []string{"sigtrack", "history 4/4", "Undo", "Redo", "Save TS", "Ring Off", "Screen Off", "unsaved +3 -0", "0 saved"} {
		require.Contains(t, view, want)
	}
}

func TestToaster_DismissHides(t *testing.T) {
	m := newFixture(t).model(t, nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.False(t, m.toaster.Visible())

	m, _ = update(t, m, intentSentMsg{action: config.BroadcastAction{Name: "Ring Off"}, ok: true})
	require.True(t, m.toaster.Visible())

	m, _ = update(t, m, toaster.DismissMsg{ID: 1})
	require.False(t, m.toaster.Visible())
}


// mouseAt renders m and returns a left-button event inside zone id.
func mouseAt(t *testing.T, m Model, id string, action tea.MouseAction) tea.MouseMsg {
	t.Helper()
	_ = m.View()

	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		z = zone.Get(id)
		return !z.IsZero()
	}, time.Second, 10*time.Millisecond)

	return tea.MouseMsg{X: z.StartX + 1, Y: z.StartY, Action: action, Button: tea.MouseButtonLeft}
}

func TestSaveTS_LongPressOpensPromptWithTextAtRelease(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")

	m, cmd := update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	require.NotNil(t, cmd, "press schedules the long-press timer")
	require.Equal(t, antidelay.GestureArmed, m.gesture.State())

	m, _ = update(t, m, longPressMsg{gen: m.gesture.Generation()})
	require.Equal(t, antidelay.GestureFired, m.gesture.State())
	require.Contains(t, plainView(m), "Release")

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionRelease))
	require.True(t, m.promptOpen)
	require.Equal(t, "abc", m.Coordinator().Pending())
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())
}

func TestSaveTS_ShortPressIsIgnored(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	f.clock.Advance(100 * time.Millisecond)
	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionRelease))

	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())
}

func TestSaveTS_LateTimerStillCountsByClock(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	f.clock.Advance(600 * time.Millisecond)
	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionRelease))

	require.True(t, m.promptOpen)
}

func TestSaveTS_LeavingControlAborts(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	gen := m.gesture.Generation()

	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())

	m, _ = update(t, m, longPressMsg{gen: gen})
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State(), "stale timer is ignored")

	f.clock.Advance(time.Second)
	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionRelease))
	require.False(t, m.promptOpen)
}

func TestSaveTS_KeyboardDuringPressDropsThePress(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	require.Equal(t, antidelay.GestureArmed, m.gesture.State())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.True(t, m.promptOpen)
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())

	// The release lands on the prompt.
	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, modal.CancelMsg{})
	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())

	// A later short tap is still a non-event.
	f.clock.Advance(10 * time.Second)
	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	f.clock.Advance(50 * time.Millisecond)
	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionRelease))

	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.StateIdle, m.Coordinator().State())
}

func TestSaveTS_ReleaseWhilePromptOpenDisarms(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.True(t, m.promptOpen)

	// Force an armed gesture as if a press had slipped through.
	m.coord.Cancel()
	_, ok := m.gesture.Press()
	require.True(t, ok)
	_ = m.coord.Begin("")

	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())
}

func TestSaveTS_ReleaseOutsideAborts(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	m, _ = update(t, m, mouseAt(t, m, zoneSaveTS, tea.MouseActionPress))
	m, _ = update(t, m, longPressMsg{gen: m.gesture.Generation()})

	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.False(t, m.promptOpen)
	require.Equal(t, antidelay.GestureDisarmed, m.gesture.State())
}

func TestMouse_ClickSaveAndUndo(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)
	m = typeText(t, m, "ab")

	m, _ = update(t, m, mouseAt(t, m, zoneUndo, tea.MouseActionRelease))
	require.Equal(t, "a", m.Text())

	m, _ = update(t, m, mouseAt(t, m, zoneRedo, tea.MouseActionRelease))
	require.Equal(t, "ab", m.Text())

	_, cmd := update(t, m, mouseAt(t, m, zoneSave, tea.MouseActionRelease))
	msg := exec(t, cmd)
	require.IsType(t, savedMsg{}, msg)
}

func TestMouse_ClickIntent(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	_, cmd := update(t, m, mouseAt(t, m, intentZone(1), tea.MouseActionRelease))
	exec(t, cmd)
	require.Equal(t, []string{"com.tasker.SCREEN_OFF"}, f.intents.actions)
}

func TestIntentPicker_SendsChosenAction(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, func(o *Options) {
		o.Config.Broadcast.Actions = append(o.Config.Broadcast.Actions,
			config.BroadcastAction{Name: "Flashlight", Action: "com.tasker.FLASH"})
	})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	require.True(t, m.pickerOpen)
	view := plainView(m)
	require.Contains(t, view, "Send intent")
	require.Contains(t, view, "Flashlight", "mouse-only actions are listed too")
	require.Contains(t, view, "ctrl+o")

	// Typed keys move the selection instead of editing the buffer.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "", m.Text())

	m, cmd = update(t, m, exec(t, cmd))
	require.False(t, m.pickerOpen)
	m, _ = update(t, m, exec(t, cmd))

	require.Equal(t, []string{"com.tasker.FLASH"}, f.intents.actions)
	require.Equal(t, "Sent Flashlight", m.toaster.Message())
}

func TestIntentPicker_Cancel(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, exec(t, cmd))

	require.False(t, m.pickerOpen)
	require.NotContains(t, plainView(m), "Send intent")
	require.Empty(t, f.intents.actions)
}

func TestIntentPicker_ClosedByConfigReload(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	require.True(t, m.pickerOpen)

	m, _ = update(t, m, pubsub.Event[watcher.Event]{Payload: watcher.Event{Kind: watcher.ConfigChanged}})
	require.False(t, m.pickerOpen)

	// A stale selection is ignored.
	_, cmd := update(t, m, picker.SelectMsg{Option: picker.Option{Value: "99"}})
	require.Nil(t, cmd)
	require.Empty(t, f.intents.actions)
}
