// Package regform is the terminal registration form.
//
// The model feeds key and mouse events into form.State transitions. Leaving
// a field is a blur (SetTouched); editing a field is SetField; Ctrl+S or the
// Register button submits. An accepted submission is sent to the sink in a
// command and a cancellable reset command clears the form after the delay.
package regform

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/keys"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/pubsub"
	"github.com/zjrosen/regform/internal/registration"
	"github.com/zjrosen/regform/internal/submission"
	"github.com/zjrosen/regform/internal/ui/markdown"
	"github.com/zjrosen/regform/internal/ui/toaster"
)

// SuccessMessage is shown while the form is in the submitted phase.
const SuccessMessage = "Registration completed successfully!"

const (
	defaultWidth = 72
	minWidth     = 40
	// title, subtitle, blank line
	headerHeight = 3
)

// ResetMsg is delivered when a scheduled reset fires or is cancelled.
type ResetMsg struct {
	Gen       uint64
	Cancelled bool
}

// SubmittedMsg reports the result of handing a record to the sink.
type SubmittedMsg struct {
	Record registration.Record
	Err    error
}

// OptionsReloadedMsg carries a reloaded option catalog.
type OptionsReloadedMsg struct {
	Catalog options.Catalog
	Err     error
}

// Config configures a form model.
type Config struct {
	// Sink receives accepted records. Nil drops them.
	Sink form.Sink
	// Catalog supplies the option lists. The zero value uses options.Default.
	Catalog options.Catalog
	// Validator replaces the field validator.
	Validator registration.ValidateFunc
	// ResetDelay is how long the success state lasts.
	ResetDelay time.Duration
	// MarkdownStyle is "dark" or "light".
	MarkdownStyle string
	// Width fixes the form width. Zero follows the terminal, capped at 72.
	Width int
	// Submissions, when set, feeds the session counter in the footer.
	Submissions pubsub.Subscriber[submission.Submission]
	// OptionsChanged signals that OptionsPath should be reloaded.
	OptionsChanged <-chan struct{}
	OptionsPath    string
}

// Model is the registration form.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     Config
	state   form.State
	catalog options.Catalog

	fields       []fieldState
	focusedIndex int // -1 = Register button

	keys     keys.FormKeyMap
	help     help.Model
	viewport viewport.Model
	toaster  toaster.Model

	terms      string
	offsets    map[registration.Field]int
	buttonLine int

	resetGen    uint64
	submissions *pubsub.Listener[submission.Submission]
	registered  int

	width       int
	fixedWidth  bool
	height      int
	showAllHelp bool
}

// New creates a form model.
func New(cfg Config) Model {
	ctx, cancel := context.WithCancel(context.Background())

	catalog := cfg.Catalog
	if catalog.Validate() != nil {
		catalog = options.Default()
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = form.DefaultResetDelay
	}

	width := defaultWidth
	if cfg.Width > 0 {
		width = max(cfg.Width, minWidth)
	}

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		state:      form.New(form.WithValidator(cfg.Validator)),
		catalog:    catalog,
		keys:       keys.DefaultFormKeyMap(),
		help:       help.New(),
		viewport:   viewport.New(width, 20),
		toaster:    toaster.New(),
		width:      width,
		fixedWidth: cfg.Width > 0,
		height:     headerHeight + 3 + 20,
	}
	m.fields = buildFields(catalog, m.inputWidth())
	m.terms = m.renderTerms()
	if cfg.Submissions != nil {
		m.submissions = pubsub.NewListener(ctx, cfg.Submissions)
	}
	m.focusedIndex = 0
	m.fields[0].focus()
	m.refresh()
	return m
}

// Init starts the cursor blink and the background listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.submissions.Listen(), m.watchOptions())
}

// Close cancels the model's context: a pending reset is abandoned and the
// listeners stop. Reset messages that still arrive are reported as errors.
func (m Model) Close() {
	m.cancel()
}

// State returns the current form state.
func (m Model) State() form.State { return m.state }

// Catalog returns the option catalog in use.
func (m Model) Catalog() options.Catalog { return m.catalog }

// FocusedField returns the focused field, or "" when the button is focused.
func (m Model) FocusedField() registration.Field {
	if m.focusedIndex < 0 || m.focusedIndex >= len(m.fields) {
		return ""
	}
	return m.fields[m.focusedIndex].field
}

// ScrollOffset returns the body viewport's first visible line.
func (m Model) ScrollOffset() int { return m.viewport.YOffset }

// FieldLine returns the body line where f is rendered, or -1.
func (m Model) FieldLine(f registration.Field) int {
	if line, ok := m.offsets[f]; ok {
		return line
	}
	return -1
}

// Registered returns how many submissions the footer counter has seen.
func (m Model) Registered() int { return m.registered }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		if !m.fixedWidth {
			m.width = max(min(msg.Width, defaultWidth), minWidth)
			m = m.resize()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			if next, cmd, handled := m.handleClick(msg); handled {
				return next, cmd
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ResetMsg:
		return m.handleReset(msg), nil

	case SubmittedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatSubmit, "Sink rejected record", msg.Err)
		}
		return m, nil

	case OptionsReloadedMsg:
		m = m.applyCatalog(msg)
		return m, tea.Batch(m.watchOptions(), m.toaster.ScheduleDismiss(3*time.Second))

	case pubsub.Event[submission.Submission]:
		if msg.Type == pubsub.SubmittedEvent {
			m.registered++
		}
		return m, m.submissions.Listen()

	case toaster.DismissMsg:
		// The success banner belongs to the submitted phase; only reset hides it.
		if !m.state.Submitted() {
			m.toaster = m.toaster.Update(msg)
		}
		return m, nil
	}

	return m.forwardToInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Help):
		m.showAllHelp = !m.showAllHelp
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m = m.nextField()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Prev):
		m = m.prevField()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.SetYOffset(max(m.viewport.YOffset-m.viewport.Height/2, 0))
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.focusedIndex < 0 {
			return m.submit()
		}
		if fs := m.focused(); fs != nil && fs.kind == registration.KindChoice {
			m = m.selectOption(m.focusedIndex, fs.cursor)
		}
		m = m.nextField()
		return m, textinput.Blink
	}

	fs := m.focused()
	if fs == nil {
		return m, nil
	}
	switch fs.kind {
	case registration.KindChoice:
		switch {
		case key.Matches(msg, m.keys.OptionUp):
			fs.moveCursor(-1)
		case key.Matches(msg, m.keys.OptionDown):
			fs.moveCursor(1)
		case key.Matches(msg, m.keys.Toggle):
			m = m.selectOption(m.focusedIndex, fs.cursor)
		}
		return m, nil
	case registration.KindFlag:
		if key.Matches(msg, m.keys.Toggle) {
			m = m.toggleFlag(m.focusedIndex)
		}
		return m, nil
	}
	return m.forwardToInput(msg)
}

// forwardToInput passes msg to the focused text input and records the new
// value when it changed.
func (m Model) forwardToInput(msg tea.Msg) (Model, tea.Cmd) {
	fs := m.focused()
	if fs == nil || fs.kind != registration.KindText {
		return m, nil
	}
	before := fs.input.Value()
	var cmd tea.Cmd
	fs.input, cmd = fs.input.Update(msg)
	if fs.input.Value() != before {
		m = m.setField(fs.field, fs.value())
	}
	return m, cmd
}

func (m Model) setField(f registration.Field, value any) Model {
	next, err := m.state.SetField(f, value)
	if err != nil {
		log.ErrorErr(log.CatForm, "SetField failed", err, "field", f)
		return m
	}
	m.state = next
	return m
}

func (m Model) selectOption(fieldIdx, optIdx int) Model {
	fs := &m.fields[fieldIdx]
	if optIdx < 0 || optIdx >= len(fs.options) {
		return m
	}
	fs.cursor = optIdx
	fs.clampOffset()
	fs.selected = fs.options[optIdx].Value
	return m.setField(fs.field, fs.value())
}

func (m Model) toggleFlag(fieldIdx int) Model {
	fs := &m.fields[fieldIdx]
	fs.checked = !fs.checked
	return m.setField(fs.field, fs.value())
}

func (m Model) submit() (Model, tea.Cmd) {
	// Blur the focused field so its own rule runs like it would on tab.
	m = m.blurFocused()

	next, out := m.state.Submit()
	m.state = next

	switch {
	case out.Ignored:
		log.Debug(log.CatForm, "Submit ignored while awaiting reset")
		return m, nil

	case out.Accepted:
		m.resetGen++
		m.toaster = m.toaster.Show(SuccessMessage, toaster.StyleSuccess)
		m.focusedIndex = -1
		log.Info(log.CatForm, "Submission accepted", "reset_in", m.cfg.ResetDelay)
		return m, tea.Batch(m.emitCmd(out.Record), resetCmd(m.ctx, m.cfg.ResetDelay, m.resetGen))

	default:
		log.Debug(log.CatForm, "Submission rejected", "errors", len(out.Errors), "first", out.FirstInvalid)
		m = m.focusByField(out.FirstInvalid)
		m.refresh()
		m.scrollTo(out.FirstInvalid)
		return m, textinput.Blink
	}
}

func (m Model) emitCmd(r registration.Record) tea.Cmd {
	sink := m.cfg.Sink
	if sink == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return SubmittedMsg{Record: r, Err: sink.Accept(ctx, r)}
	}
}

// resetCmd waits for the reset delay or for ctx to be cancelled.
func resetCmd(ctx context.Context, d time.Duration, gen uint64) tea.Cmd {
	return func() tea.Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return ResetMsg{Gen: gen}
		case <-ctx.Done():
			return ResetMsg{Gen: gen, Cancelled: true}
		}
	}
}

func (m Model) handleReset(msg ResetMsg) Model {
	if m.ctx.Err() != nil {
		if !msg.Cancelled {
			log.ErrorErr(log.CatUI, "Reset fired after teardown", form.ErrClosed, "gen", msg.Gen)
		}
		return m
	}
	if msg.Cancelled || msg.Gen != m.resetGen || !m.state.Submitted() {
		return m
	}

	m.state = m.state.Reset()
	for i := range m.fields {
		m.fields[i].blur()
		m.fields[i].clear()
	}
	m.toaster = m.toaster.Hide()
	m.focusedIndex = 0
	m.fields[0].focus()
	m.viewport.GotoTop()
	log.Debug(log.CatForm, "Form reset")
	return m
}

// watchOptions waits for the next change signal and reloads the catalog.
func (m Model) watchOptions() tea.Cmd {
	ch, path, ctx := m.cfg.OptionsChanged, m.cfg.OptionsPath, m.ctx
	if ch == nil || path == "" {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
		}
		c, err := options.Load(path)
		return OptionsReloadedMsg{Catalog: c, Err: err}
	}
}

func (m Model) applyCatalog(msg OptionsReloadedMsg) Model {
	if msg.Err != nil {
		log.ErrorErr(log.CatOptions, "Reloading options failed", msg.Err, "path", m.cfg.OptionsPath)
		if !m.state.Submitted() {
			m.toaster = m.toaster.Show("Options file invalid, keeping current lists", toaster.StyleError)
		}
		return m
	}

	m.catalog = msg.Catalog
	for i := range m.fields {
		fs := &m.fields[i]
		if fs.kind != registration.KindChoice {
			continue
		}
		if fs.setOptions(m.catalog.Choices(fs.field)) {
			m = m.setField(fs.field, "")
		}
	}
	log.Info(log.CatOptions, "Options reloaded", "path", m.cfg.OptionsPath)
	if !m.state.Submitted() {
		m.toaster = m.toaster.Show("Options reloaded", toaster.StyleInfo)
	}
	return m
}

func (m Model) focused() *fieldState {
	if m.focusedIndex < 0 || m.focusedIndex >= len(m.fields) {
		return nil
	}
	return &m.fields[m.focusedIndex]
}

// blurFocused blurs the focused widget and marks its field touched.
func (m Model) blurFocused() Model {
	fs := m.focused()
	if fs == nil {
		return m
	}
	fs.blur()
	m.state = m.state.SetTouched(fs.field)
	return m
}

func (m Model) focusIndex(i int) Model {
	m = m.blurFocused()
	m.focusedIndex = i
	if fs := m.focused(); fs != nil {
		fs.focus()
	}
	m.refresh()
	m.ensureFocusedVisible()
	return m
}

// nextField moves focus forward; after the last field comes the button,
// then the first field again.
func (m Model) nextField() Model {
	switch {
	case m.focusedIndex < 0:
		return m.focusIndex(0)
	case m.focusedIndex == len(m.fields)-1:
		return m.focusIndex(-1)
	default:
		return m.focusIndex(m.focusedIndex + 1)
	}
}

func (m Model) prevField() Model {
	switch {
	case m.focusedIndex < 0:
		return m.focusIndex(len(m.fields) - 1)
	case m.focusedIndex == 0:
		return m.focusIndex(-1)
	default:
		return m.focusIndex(m.focusedIndex - 1)
	}
}

// focusByField focuses the widget for f. A field without a widget leaves
// focus where it is.
func (m Model) focusByField(f registration.Field) Model {
	for i := range m.fields {
		if m.fields[i].field == f {
			m.focusedIndex = i
			m.fields[i].focus()
			return m
		}
	}
	return m
}

// scrollTo brings f's line to the top of the viewport. Unknown fields are
// ignored.
func (m *Model) scrollTo(f registration.Field) {
	line, ok := m.offsets[f]
	if !ok {
		return
	}
	m.viewport.SetYOffset(max(line-1, 0))
}

func (m *Model) ensureFocusedVisible() {
	if m.focusedIndex < 0 {
		m.viewport.SetYOffset(max(m.buttonLine-m.viewport.Height+2, m.viewport.YOffset))
		return
	}
	line, ok := m.offsets[m.fields[m.focusedIndex].field]
	if !ok {
		return
	}
	// A focused field takes its label, input and up to a full option list.
	bottom := line + 2
	if m.fields[m.focusedIndex].kind == registration.KindChoice {
		bottom = line + 1 + min(len(m.fields[m.focusedIndex].options), maxVisibleOptions)
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(max(line-1, 0))
	case bottom >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

// handleClick routes a left click to the zone under the pointer.
func (m Model) handleClick(msg tea.MouseMsg) (Model, tea.Cmd, bool) {
	if z := zone.Get(zoneSubmit); z != nil && z.InBounds(msg) {
		next, cmd := m.focusIndex(-1).submit()
		return next, cmd, true
	}
	for i := range m.fields {
		fs := m.fields[i]
		if fs.kind == registration.KindChoice && i == m.focusedIndex {
			for j := range fs.options {
				if z := zone.Get(optionZoneID(fs.field, j)); z != nil && z.InBounds(msg) {
					return m.selectOption(i, j), nil, true
				}
			}
		}
		if z := zone.Get(fieldZoneID(fs.field)); z != nil && z.InBounds(msg) {
			if m.focusedIndex != i {
				m = m.focusIndex(i)
			}
			if fs.kind == registration.KindFlag {
				m = m.toggleFlag(i)
			}
			return m, textinput.Blink, true
		}
	}
	return m, nil, false
}

func (m Model) resize() Model {
	for i := range m.fields {
		if m.fields[i].kind == registration.KindText {
			m.fields[i].input.Width = m.inputWidth()
		}
	}
	m.viewport.Width = m.width
	m.toaster = m.toaster.SetWidth(m.width)
	m.terms = m.renderTerms()
	return m
}

// inputWidth is the space left for a text input inside a section box.
func (m Model) inputWidth() int {
	return m.width - 6
}

func (m Model) toasterHeight() int {
	if !m.toaster.Visible() {
		return 0
	}
	return 3
}

func (m Model) renderTerms() string {
	r, err := markdown.New(m.width-4, m.cfg.MarkdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "Creating markdown renderer failed", err)
		return markdown.Terms()
	}
	out, err := r.Render(markdown.Terms())
	if err != nil {
		log.ErrorErr(log.CatUI, "Rendering terms failed", err)
		return markdown.Terms()
	}
	return out
}
