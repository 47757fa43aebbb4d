// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/history"
	"github.com/zjrosen/sigtrack/internal/keys"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/pubsub"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/ui/help"
	"github.com/zjrosen/sigtrack/internal/ui/modal"
	"github.com/zjrosen/sigtrack/internal/ui/picker"
	"github.com/zjrosen/sigtrack/internal/ui/toaster"
	"github.com/zjrosen/sigtrack/internal/watcher"
)

// Mouse zones for the control bar.
const (
	zoneUndo   = "btn-undo"
	zoneRedo   = "btn-redo"
	zoneClear  = "btn-clear"
	zoneSave   = "btn-save"
	zoneSaveTS = "btn-save-ts"

	zoneIntentPrefix = "btn-intent-"
	promptZonePrefix = "antidelay"
	delayInputKey    = "seconds"
)

type flashTarget string

const (
	flashNone   flashTarget = ""
	flashSave   flashTarget = "save"
	flashSaveTS flashTarget = "save-ts"
)

// Store is the commit collaborator as seen by the UI. Delayed saves go
// through its Commit via the coordinator.
type Store interface {
	antidelay.Committer
	Save(ctx context.Context, text string, delaySeconds *int) (*signals.SavedSignal, error)
	Count(ctx context.Context) (int, error)
	Broker() *pubsub.Broker[signals.SavedSignal]
}

// Dispatcher is the broadcast collaborator as seen by the UI.
type Dispatcher interface {
	SendIntent(ctx context.Context, action string) bool
}

// configurable dispatchers pick up broadcast settings on config reload.
type configurable interface {
	SetConfig(cfg config.BroadcastConfig)
}

// Options wires the model to its collaborators.
type Options struct {
	Config     config.Config
	ConfigPath string // Written with the last used antidelay and watched for changes
	Store      Store
	Dispatcher Dispatcher
	Clock      antidelay.Clock
	// InitialText seeds the buffer and the first history entry.
	InitialText string
	// Watch enables hot reload of ConfigPath.
	Watch bool
}

// Model is the root application state.
type Model struct {
	cfg        config.Config
	configPath string

	keys    keys.KeyMap
	actions []keys.ActionBinding

	history *history.History
	coord   *antidelay.Coordinator
	gesture *antidelay.Gesture

	input   textarea.Model
	prompt  modal.Model
	help    help.Model
	toaster toaster.Model
	intents picker.Model

	promptOpen  bool
	pickerOpen  bool
	showHelp    bool
	showHistory bool

	flash   flashTarget
	flashID uint64

	store      Store
	dispatcher Dispatcher

	// lastSaved is the text of the most recent save from this session,
	// used for the unsaved-changes summary.
	lastSaved  string
	savedCount int
	lastSignal *signals.SavedSignal

	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc

	signalListener  *pubsub.ContinuousListener[signals.SavedSignal]
	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.Event]
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	ctx, cancel := context.WithCancel(context.Background())

	h := history.New(cfg.History.MaxEntries)
	var committer antidelay.Committer
	if opts.Store != nil {
		committer = opts.Store
	}
	coord := antidelay.NewCoordinator(committer, cfg.Antidelay.LastSeconds)
	gesture := antidelay.NewGesture(coord, cfg.Antidelay.LongPress(), opts.Clock)

	ta := textarea.New()
	ta.Placeholder = "Type a signal..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	// These collide with app bindings.
	ta.KeyMap.TransposeCharacterBackward.SetEnabled(false)
	ta.KeyMap.DeleteWordBackward.SetKeys("alt+backspace")
	ta.KeyMap.LineEnd.SetKeys("end")
	ta.Focus()
	if opts.InitialText != "" {
		ta.SetValue(opts.InitialText)
		h.Record(opts.InitialText)
	}

	km := keys.DefaultKeyMap()
	actions := keys.Broadcasts(km, cfg.Broadcast.Actions)

	m := Model{
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		keys:        km,
		actions:     actions,
		history:     h,
		coord:       coord,
		gesture:     gesture,
		input:       ta,
		help:        help.New(km, actions, gesture.Threshold()),
		toaster:     toaster.New(time.Duration(cfg.UI.ToastSeconds) * time.Second),
		showHistory: cfg.UI.ShowHistory,
		store:       opts.Store,
		dispatcher:  opts.Dispatcher,
		ctx:         ctx,
		cancel:      cancel,
	}

	if opts.Store != nil {
		m.signalListener = pubsub.NewContinuousListener(ctx, opts.Store.Broker())
	}

	if opts.Watch && opts.ConfigPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(opts.ConfigPath))
		if err == nil {
			if err := w.Start(); err == nil {
				m.watcherHandle = w
				m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
			} else {
				log.Warn(log.CatWatcher, "Config watcher failed to start", "error", err)
				_ = w.Stop()
			}
		} else {
			log.Warn(log.CatWatcher, "Config watcher unavailable", "error", err)
		}
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.store != nil {
		cmds = append(cmds, countCmd(m.ctx, m.store))
	}
	if m.signalListener != nil {
		cmds = append(cmds, m.signalListener.Listen())
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.prompt.SetSize(msg.Width, msg.Height)
		m.intents = m.intents.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case modal.SubmitMsg:
		return m.submitDelay(msg.Values[delayInputKey])

	case modal.CancelMsg:
		if m.coord.Cancel() {
			m.promptOpen = false
		}
		return m, nil

	case picker.SelectMsg:
		m.pickerOpen = false
		i, err := strconv.Atoi(msg.Option.Value)
		if err != nil || i < 0 || i >= len(m.actions) {
			return m, nil
		}
		return m.sendIntent(m.actions[i].Action)

	case picker.CancelMsg:
		m.pickerOpen = false
		return m, nil

	case longPressMsg:
		m.gesture.Expire(msg.gen)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			return m.showError("Save failed", msg.err)
		}
		m.lastSaved = msg.sig.Text
		return m.acknowledge(flashSave, "Saved "+msg.sig.Label())

	case delayedSavedMsg:
		outcome := m.coord.Complete(msg.err)
		if errors.Is(outcome.Err, antidelay.ErrNotAwaiting) {
			return m, nil
		}
		// The coordinator remembers the delay either way; so does the config.
		persist := persistDelayCmd(m.configPath, outcome.Delay)
		if outcome.Err != nil {
			next, cmd := m.showError("Save failed", outcome.Err)
			return next, tea.Batch(cmd, persist)
		}
		m.lastSaved = outcome.Text
		next, cmd := m.acknowledge(flashSaveTS, fmt.Sprintf("Saved with -%ds", outcome.Delay))
		return next, tea.Batch(cmd, persist)

	case flashDoneMsg:
		if msg.id == m.flashID {
			m.flash = flashNone
		}
		return m, nil

	case intentSentMsg:
		if msg.ok {
			return m.toast("Sent "+msg.action.Name, toaster.StyleSuccess)
		}
		return m.toast("Could not send "+msg.action.Name, toaster.StyleError)

	case delayPersistedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatConfig, "Failed to persist antidelay", msg.err, "seconds", msg.seconds)
			return m.toast("Could not remember antidelay", toaster.StyleWarn)
		}
		return m, nil

	case countLoadedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatDB, "Failed to count saved signals", msg.err)
			return m, nil
		}
		m.savedCount = msg.count
		return m, nil

	case pubsub.Event[signals.SavedSignal]:
		switch msg.Type {
		case pubsub.CreatedEvent:
			m.savedCount++
			sig := msg.Payload
			m.lastSignal = &sig
		case pubsub.DeletedEvent:
			if m.savedCount > 0 {
				m.savedCount--
			}
		}
		return m, m.signalListener.Listen()

	case pubsub.Event[watcher.Event]:
		switch msg.Payload.Kind {
		case watcher.ConfigChanged:
			next, cmd := m.reloadConfig()
			return next, tea.Batch(cmd, next.watcherListener.Listen())
		case watcher.WatchError:
			log.Warn(log.CatWatcher, "Watcher error received", "error", msg.Payload.Err)
		}
		return m, m.watcherListener.Listen()

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil
	}

	if m.promptOpen {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.promptOpen {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.pickerOpen {
		var cmd tea.Cmd
		m.intents, cmd = m.intents.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.showHelp = false
		} else if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.ToggleHistory):
		m.showHistory = !m.showHistory
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		return m.undo(), nil
	case key.Matches(msg, m.keys.Redo):
		return m.redo(), nil
	case key.Matches(msg, m.keys.Clear):
		return m.clear(), nil
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.SaveTS):
		// The keyboard has no hold, so it goes straight to the prompt.
		return m.beginDelayed(m.input.Value())
	case key.Matches(msg, m.keys.SendIntent):
		return m.openPicker(), nil
	}

	for _, ab := range m.actions {
		if key.Matches(msg, ab.Binding) {
			return m.sendIntent(ab.Action)
		}
	}

	return m.edit(msg)
}

// edit forwards msg to the text area and records the result.
func (m Model) edit(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.history.Record(after)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.promptOpen {
		if msg.Action == tea.MouseActionRelease {
			m.gesture.Abort()
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	if m.showHelp || m.pickerOpen {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inZone(zoneSaveTS, msg) {
			return m.pressSaveTS()
		}

	case tea.MouseActionMotion:
		if m.gesture.State() != antidelay.GestureDisarmed && !inZone(zoneSaveTS, msg) {
			m.gesture.Abort()
			log.Debug(log.CatAntidelay, "Press left Save TS, gesture aborted")
		}

	case tea.MouseActionRelease:
		if m.gesture.State() != antidelay.GestureDisarmed {
			if inZone(zoneSaveTS, msg) {
				return m.releaseSaveTS()
			}
			m.gesture.Abort()
			return m, nil
		}
		return m.click(msg)
	}

	return m, nil
}

func (m Model) click(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case inZone(zoneUndo, msg):
		return m.undo(), nil
	case inZone(zoneRedo, msg):
		return m.redo(), nil
	case inZone(zoneClear, msg):
		return m.clear(), nil
	case inZone(zoneSave, msg):
		return m.save()
	}
	for i, ab := range m.actions {
		if inZone(intentZone(i), msg) {
			return m.sendIntent(ab.Action)
		}
	}
	return m, nil
}

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

func intentZone(i int) string {
	return zoneIntentPrefix + strconv.Itoa(i)
}

func (m Model) undo() Model {
	if m.history.CanUndo() {
		m.input.SetValue(m.history.Undo())
	}
	return m
}

func (m Model) redo() Model {
	if m.history.CanRedo() {
		m.input.SetValue(m.history.Redo())
	}
	return m
}

func (m Model) clear() Model {
	m.history.Clear()
	m.input.Reset()
	return m
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m.toast("No storage configured", toaster.StyleError)
	}
	return m, saveCmd(m.ctx, m.store, m.input.Value())
}

func (m Model) pressSaveTS() (tea.Model, tea.Cmd) {
	gen, ok := m.gesture.Press()
	if !ok {
		return m, nil
	}
	return m, longPressCmd(m.gesture.Threshold(), gen)
}

func (m Model) releaseSaveTS() (tea.Model, tea.Cmd) {
	if !m.gesture.Release(m.input.Value()) {
		return m, nil
	}
	return m.openPrompt()
}

func (m Model) beginDelayed(text string) (tea.Model, tea.Cmd) {
	if !m.coord.Begin(text) {
		return m, nil
	}
	return m.openPrompt()
}

// openPrompt shows the antidelay prompt for the coordinator's pending save.
// Any press still held on Save TS is dropped.
func (m Model) openPrompt() (tea.Model, tea.Cmd) {
	m.gesture.Abort()
	m.prompt = modal.New(modal.Config{
		Title:        "Save with antidelay",
		Message:      "How many seconds ago did it happen?",
		ConfirmLabel: "Save",
		ZonePrefix:   promptZonePrefix,
		Inputs: []modal.InputConfig{{
			Key:         delayInputKey,
			Label:       "Antidelay (seconds)",
			Placeholder: "0",
			Value:       m.coord.Input(),
			MaxLength:   6,
		}},
	})
	m.prompt.SetSize(m.width, m.height)
	m.promptOpen = true
	return m, m.prompt.Init()
}

func (m Model) submitDelay(input string) (tea.Model, tea.Cmd) {
	req, err := m.coord.Submit(input)
	switch {
	case errors.Is(err, antidelay.ErrInvalidDelay):
		m.prompt.SetError("Enter a whole number of seconds (0 or more)")
		return m, nil
	case err != nil:
		// Already committing, or nothing pending.
		return m, nil
	}
	m.promptOpen = false
	return m, delayedSaveCmd(m.ctx, m.coord, req)
}

// openPicker lists every configured action, including those reachable
// only by mouse.
func (m Model) openPicker() Model {
	options := make([]picker.Option, 0, len(m.actions))
	for i, ab := range m.actions {
		opt := picker.Option{Label: ab.Action.Name, Value: strconv.Itoa(i)}
		if ab.Binding.Enabled() {
			opt.Hint = ab.Binding.Help().Key
		}
		options = append(options, opt)
	}
	m.intents = picker.New("Send intent", options).
		SetBoxWidth(36).
		SetSize(m.width, m.height)
	m.pickerOpen = true
	return m
}

func (m Model) sendIntent(action config.BroadcastAction) (tea.Model, tea.Cmd) {
	if m.dispatcher == nil {
		return m.toast("Broadcasts are not configured", toaster.StyleWarn)
	}
	log.Info(log.CatBroadcast, "Sending intent", "name", action.Name, "action", action.Action)
	return m, sendIntentCmd(m.ctx, m.dispatcher, action)
}

// acknowledge flashes the pressed control and shows a success toast.
func (m Model) acknowledge(target flashTarget, message string) (Model, tea.Cmd) {
	m.flash = target
	m.flashID++
	flash := flashCmd(time.Duration(m.cfg.UI.PressedFlashMs)*time.Millisecond, m.flashID)
	var toastCmd tea.Cmd
	m.toaster, toastCmd = m.toaster.Show(message, toaster.StyleSuccess)
	return m, tea.Batch(flash, toastCmd)
}

func (m Model) toast(message string, style toaster.Style) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style)
	return m, cmd
}

func (m Model) showError(prefix string, err error) (Model, tea.Cmd) {
	if errors.Is(err, signals.ErrEmptySignal) {
		return m.toast("Nothing to save", toaster.StyleWarn)
	}
	log.ErrorErr(log.CatUI, prefix, err)
	return m.toast(prefix+": "+err.Error(), toaster.StyleError)
}

func (m Model) reloadConfig() (Model, tea.Cmd) {
	cfg, err := config.Load(m.configPath)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Config reload failed", err)
		return m.toast("Config not reloaded: "+err.Error(), toaster.StyleError)
	}

	m.cfg = cfg
	if m.coord.State() == antidelay.StateIdle {
		m.coord.SetLastDelay(cfg.Antidelay.LastSeconds)
	}
	m.gesture.SetThreshold(cfg.Antidelay.LongPress())
	m.actions = keys.Broadcasts(m.keys, cfg.Broadcast.Actions)
	m.pickerOpen = false
	m.help = help.New(m.keys, m.actions, m.gesture.Threshold()).SetSize(m.width, m.height)
	if c, ok := m.dispatcher.(configurable); ok {
		c.SetConfig(cfg.Broadcast)
	}
	log.Info(log.CatConfig, "Config reloaded", "path", m.configPath)
	return m, nil
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}

// History exposes the edit history.
func (m Model) History() *history.History { return m.history }

// Coordinator exposes the delayed-save coordinator.
func (m Model) Coordinator() *antidelay.Coordinator { return m.coord }

// Text returns the current buffer.
func (m Model) Text() string { return m.input.Value() }
