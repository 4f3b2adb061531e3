// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/bureau-chat/chat"
	"github.com/bureau-foundation/bureau-chat/lib/clock"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

// Controller is the part of *chat.Controller the model drives.
type Controller interface {
	State() chat.State
	Mount()

	CreateRoom(ctx context.Context)
	JoinRoom(ctx context.Context, roomID ref.RoomID)
	AcceptInvite(ctx context.Context, roomID ref.RoomID)
	InviteUser(ctx context.Context)
	SendMessage(ctx context.Context)

	SetRoomNameDraft(value string)
	SetInviteDraft(value string)
	SetMessageDraft(value string)
}

// Options configures a Model. Zero values select defaults.
type Options struct {
	// Context is passed to controller actions. Defaults to
	// context.Background.
	Context context.Context

	// Sink must be the ProgramSink wired to the controller, if any.
	// The model acknowledges its state-change messages.
	Sink *ProgramSink

	// UserID is the local account, used to highlight its own messages.
	UserID ref.UserID

	// Clock measures notification fade. Defaults to clock.Real.
	Clock clock.Clock

	// FadeDelay is how long a notification stays in the status bar.
	// Defaults to DefaultFadeDelay.
	FadeDelay time.Duration

	Theme *Theme
	Keys  *KeyMap
}

// DefaultFadeDelay is the notification lifetime when Options leaves it
// unset.
const DefaultFadeDelay = 5 * time.Second

// Sidebar width bounds, in cells.
const (
	sidebarMinWidth = 20
	sidebarMaxWidth = 36
)

// focusRegion selects where key presses go.
type focusRegion int

const (
	focusSidebar focusRegion = iota
	focusForm
	focusFilter
)

// actionDoneMsg is returned by every controller action command. The
// model re-reads state on it so it stays current even without a sink.
type actionDoneMsg struct{}

// noticeFadeMsg clears the notice with the matching sequence number.
type noticeFadeMsg struct {
	seq uint64
}

type notice struct {
	severity chat.Severity
	text     string
	seq      uint64
}

// sidebarEntry is one selectable row: a joined room or an invite.
type sidebarEntry struct {
	roomID    ref.RoomID
	label     string
	invite    bool
	positions []int
}

// Model is the top-level bubbletea model for the chat TUI.
type Model struct {
	controller Controller
	ctx        context.Context
	sink       *ProgramSink
	userID     ref.UserID
	clock      clock.Clock
	fadeDelay  time.Duration
	theme      Theme
	keys       KeyMap

	width  int
	height int
	ready  bool

	state chat.State

	entries       []sidebarEntry
	cursor        int
	sidebarOffset int
	filter        RoomFilter

	focus    focusRegion
	form     *form
	messages viewport.Model

	// renderedFor is the active room whose history is in the viewport,
	// so a room switch scrolls to the newest message.
	renderedFor ref.RoomID

	notice    *notice
	noticeSeq uint64
}

// NewModel creates a Model over controller. The controller is mounted
// by the command returned from Init.
func NewModel(controller Controller, options Options) Model {
	model := Model{
		controller: controller,
		ctx:        options.Context,
		sink:       options.Sink,
		userID:     options.UserID,
		clock:      options.Clock,
		fadeDelay:  options.FadeDelay,
		theme:      DefaultTheme,
		keys:       DefaultKeyMap,
		messages:   viewport.New(80, 20),
	}
	if model.ctx == nil {
		model.ctx = context.Background()
	}
	if model.clock == nil {
		model.clock = clock.Real()
	}
	if model.fadeDelay <= 0 {
		model.fadeDelay = DefaultFadeDelay
	}
	if options.Theme != nil {
		model.theme = *options.Theme
	}
	if options.Keys != nil {
		model.keys = *options.Keys
	}
	return model
}

// Init implements tea.Model. Mounting reads the client's room set, so
// it runs off the program loop.
func (model Model) Init() tea.Cmd {
	controller := model.controller
	return func() tea.Msg {
		controller.Mount()
		return actionDoneMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.layout()
		model.renderMessages(false)
		if model.form != nil {
			model.form.input.Width = max(model.width-len(model.form.input.Prompt)-1, 10)
		}

	case stateChangedMsg:
		if model.sink != nil {
			model.sink.acknowledge()
		}
		model.refreshState()

	case actionDoneMsg:
		model.refreshState()

	case noticeMsg:
		return model, model.showNotice(message.notification.Severity, message.notification.Text)

	case logRecordMsg:
		severity := chat.SeverityInfo
		if message.Level >= slog.LevelError {
			severity = chat.SeverityFailure
		}
		return model, model.showNotice(severity, message.Summary)

	case noticeFadeMsg:
		if model.notice != nil && model.notice.seq == message.seq {
			model.notice = nil
		}

	case tea.KeyMsg:
		switch model.focus {
		case focusForm:
			return model.handleFormKeys(message)
		case focusFilter:
			return model.handleFilterKeys(message)
		default:
			return model.handleSidebarKeys(message)
		}

	default:
		// Cursor blink and other input-internal messages.
		if model.form != nil {
			var command tea.Cmd
			model.form.input, command = model.form.input.Update(message)
			return model, command
		}
	}
	return model, nil
}

// refreshState pulls a new snapshot and re-derives everything shown.
func (model *Model) refreshState() {
	model.state = model.controller.State()
	model.rebuildEntries()
	model.renderMessages(model.state.ActiveRoom != model.renderedFor)
	model.renderedFor = model.state.ActiveRoom
	model.syncFormFromDraft()
}

// syncFormFromDraft copies a draft the controller changed (a cleared
// draft after a successful action) into the open form.
func (model *Model) syncFormFromDraft() {
	if model.form == nil || !model.form.kind.bindsDraft() {
		return
	}
	draft := model.draftFor(model.form.kind)
	if draft != model.form.input.Value() {
		model.form.input.SetValue(draft)
		model.form.input.CursorEnd()
	}
}

func (model *Model) draftFor(kind formKind) string {
	switch kind {
	case formCreateRoom:
		return model.state.RoomNameDraft
	case formInviteUser:
		return model.state.InviteDraft
	case formCompose:
		return model.state.MessageDraft
	default:
		return ""
	}
}

func (model *Model) setDraft(kind formKind, value string) {
	switch kind {
	case formCreateRoom:
		model.controller.SetRoomNameDraft(value)
		model.state.RoomNameDraft = value
	case formInviteUser:
		model.controller.SetInviteDraft(value)
		model.state.InviteDraft = value
	case formCompose:
		model.controller.SetMessageDraft(value)
		model.state.MessageDraft = value
	}
}

// rebuildEntries lists filtered rooms followed by every invite, and
// keeps the cursor on the same room when it is still listed.
func (model *Model) rebuildEntries() {
	var selected ref.RoomID
	if model.cursor < len(model.entries) {
		selected = model.entries[model.cursor].roomID
	}

	matches := model.filter.Apply(model.state.Rooms)
	entries := make([]sidebarEntry, 0, len(matches)+len(model.state.Invites))
	for _, match := range matches {
		entries = append(entries, sidebarEntry{
			roomID:    match.Room.ID,
			label:     match.Room.Name,
			positions: match.Positions,
		})
	}
	for _, invite := range model.state.Invites {
		entries = append(entries, sidebarEntry{
			roomID: invite.ID,
			label:  invite.Name,
			invite: true,
		})
	}
	model.entries = entries

	model.cursor = 0
	if !selected.IsZero() {
		if index := slices.IndexFunc(entries, func(entry sidebarEntry) bool {
			return entry.roomID == selected
		}); index >= 0 {
			model.cursor = index
		}
	}
	model.ensureCursorVisible()
}

func (model *Model) selected() (sidebarEntry, bool) {
	if model.cursor < 0 || model.cursor >= len(model.entries) {
		return sidebarEntry{}, false
	}
	return model.entries[model.cursor], true
}

func (model *Model) firstInvite() (sidebarEntry, bool) {
	for _, entry := range model.entries {
		if entry.invite {
			return entry, true
		}
	}
	return sidebarEntry{}, false
}

// run wraps a controller action as a command.
func (model Model) run(action func(ctx context.Context)) tea.Cmd {
	ctx := model.ctx
	return func() tea.Msg {
		action(ctx)
		return actionDoneMsg{}
	}
}

func (model *Model) showNotice(severity chat.Severity, text string) tea.Cmd {
	model.noticeSeq++
	seq := model.noticeSeq
	model.notice = &notice{severity: severity, text: text, seq: seq}

	after := model.clock.After(model.fadeDelay)
	return func() tea.Msg {
		<-after
		return noticeFadeMsg{seq: seq}
	}
}

func (model Model) handleSidebarKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
			model.ensureCursorVisible()
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.entries)-1 {
			model.cursor++
			model.ensureCursorVisible()
		}

	case key.Matches(message, model.keys.PageUp):
		model.messages.HalfViewUp()

	case key.Matches(message, model.keys.PageDown):
		model.messages.HalfViewDown()

	case key.Matches(message, model.keys.Open):
		entry, ok := model.selected()
		if !ok {
			return model, nil
		}
		controller := model.controller
		if entry.invite {
			return model, model.run(func(ctx context.Context) { controller.AcceptInvite(ctx, entry.roomID) })
		}
		if entry.roomID == model.state.ActiveRoom {
			return model, nil
		}
		return model, model.run(func(ctx context.Context) { controller.JoinRoom(ctx, entry.roomID) })

	case key.Matches(message, model.keys.NewRoom):
		return model, model.openForm(formCreateRoom, model.state.RoomNameDraft)

	case key.Matches(message, model.keys.JoinRoom):
		return model, model.openForm(formJoinRoom, "")

	case key.Matches(message, model.keys.Accept):
		entry, ok := model.selected()
		if !ok || !entry.invite {
			entry, ok = model.firstInvite()
		}
		if !ok {
			return model, model.showNotice(chat.SeverityInfo, "No pending invites.")
		}
		return model, model.openForm(formAcceptInvite, entry.roomID.String())

	case key.Matches(message, model.keys.Invite):
		if model.state.Idle() {
			return model, model.showNotice(chat.SeverityInfo, "Join a room before inviting.")
		}
		return model, model.openForm(formInviteUser, model.state.InviteDraft)

	case key.Matches(message, model.keys.Compose):
		if model.state.Idle() {
			return model, model.showNotice(chat.SeverityInfo, "Join a room before sending.")
		}
		return model, model.openForm(formCompose, model.state.MessageDraft)

	case key.Matches(message, model.keys.FilterActivate):
		model.focus = focusFilter
		model.filter.Active = true
	}
	return model, nil
}

func (model *Model) openForm(kind formKind, value string) tea.Cmd {
	var blink tea.Cmd
	model.form, blink = newForm(kind, value, model.width)
	model.focus = focusForm
	return blink
}

func (model *Model) closeForm() {
	model.form = nil
	model.focus = focusSidebar
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.closeForm()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		return model.submitForm()
	}

	var command tea.Cmd
	before := model.form.input.Value()
	model.form.input, command = model.form.input.Update(message)
	if after := model.form.input.Value(); after != before && model.form.kind.bindsDraft() {
		model.setDraft(model.form.kind, after)
	}
	return model, command
}

// submitForm runs the form's action. The composer stays open for the
// next message; every other form closes.
func (model Model) submitForm() (tea.Model, tea.Cmd) {
	kind := model.form.kind
	value := strings.TrimSpace(model.form.input.Value())
	controller := model.controller

	switch kind {
	case formCreateRoom:
		model.closeForm()
		return model, model.run(controller.CreateRoom)

	case formInviteUser:
		model.closeForm()
		return model, model.run(controller.InviteUser)

	case formCompose:
		return model, model.run(controller.SendMessage)

	case formJoinRoom, formAcceptInvite:
		if value == "" {
			model.closeForm()
			return model, nil
		}
		roomID, err := ref.ParseRoomID(value)
		if err != nil {
			return model, model.showNotice(chat.SeverityFailure, "Invalid room ID: "+value)
		}
		model.closeForm()
		if kind == formAcceptInvite {
			return model, model.run(func(ctx context.Context) { controller.AcceptInvite(ctx, roomID) })
		}
		return model, model.run(func(ctx context.Context) { controller.JoinRoom(ctx, roomID) })
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.filter.Clear()
		model.focus = focusSidebar
	case tea.KeyEnter:
		model.filter.Active = false
		model.focus = focusSidebar
	case tea.KeyBackspace:
		if !model.filter.HandleBackspace() {
			return model, nil
		}
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
	default:
		return model, nil
	}
	model.rebuildEntries()
	return model, nil
}

// --- Layout ---

func (model Model) sidebarWidth() int {
	return min(max(model.width/4, sidebarMinWidth), sidebarMaxWidth)
}

func (model Model) bodyHeight() int {
	// Header, form line, and status bar.
	return max(model.height-3, 1)
}

func (model *Model) layout() {
	model.messages.Width = max(model.width-model.sidebarWidth()-1, 10)
	model.messages.Height = model.bodyHeight()
	model.ensureCursorVisible()
}

func (model *Model) ensureCursorVisible() {
	visible := model.bodyHeight()
	if model.cursor < model.sidebarOffset {
		model.sidebarOffset = model.cursor
	}
	if model.cursor >= model.sidebarOffset+visible {
		model.sidebarOffset = model.cursor - visible + 1
	}
	if model.sidebarOffset < 0 {
		model.sidebarOffset = 0
	}
}

// renderMessages rebuilds the viewport content. The view follows new
// messages when it was already at the bottom or when forced.
func (model *Model) renderMessages(forceBottom bool) {
	follow := forceBottom || model.messages.AtBottom()
	model.messages.SetContent(model.messagesContent(model.messages.Width))
	if follow {
		model.messages.GotoBottom()
	}
}

func (model Model) messagesContent(width int) string {
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	if model.state.Idle() {
		return faint.Render("No room selected. Pick one from the sidebar, or press n to create one.")
	}
	if len(model.state.Messages) == 0 {
		return faint.Render("No messages yet.")
	}

	var builder strings.Builder
	for index, message := range model.state.Messages {
		if index > 0 {
			builder.WriteString("\n")
		}
		senderColor := model.theme.SenderForeground
		if !model.userID.IsZero() && message.Sender == model.userID {
			senderColor = model.theme.OwnSender
		}
		builder.WriteString(lipgloss.NewStyle().Bold(true).Foreground(senderColor).Render(message.Sender.String()))
		builder.WriteString("\n")

		body := renderMessageBody(message.Content, model.theme, width-2)
		if body == "" {
			body = faint.Render("(empty)")
		}
		for lineIndex, line := range strings.Split(body, "\n") {
			if lineIndex > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString("  " + line)
		}
	}
	return builder.String()
}

// --- View ---

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		model.renderSidebar(),
		model.renderDivider(),
		model.messages.View(),
	)
	return strings.Join([]string{
		model.renderHeader(),
		body,
		model.renderFormLine(),
		model.renderStatus(),
	}, "\n")
}

func (model Model) activeRoomName() string {
	for _, room := range model.state.Rooms {
		if room.ID == model.state.ActiveRoom {
			return room.Name
		}
	}
	return model.state.ActiveRoom.String()
}

func (model Model) renderHeader() string {
	title := "bureau-chat"
	if !model.state.Idle() {
		title += " · " + model.activeRoomName()
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	return style.Render(ansi.Truncate(title, model.width, "…"))
}

func (model Model) renderSidebar() string {
	width := model.sidebarWidth()
	height := model.bodyHeight()

	lines := make([]string, 0, height)
	end := min(model.sidebarOffset+height, len(model.entries))
	for index := model.sidebarOffset; index < end; index++ {
		lines = append(lines, model.renderEntry(model.entries[index], index == model.cursor, width))
	}
	if len(model.entries) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("No rooms"))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (model Model) renderEntry(entry sidebarEntry, selected bool, width int) string {
	marker := "  "
	if entry.roomID == model.state.ActiveRoom {
		marker = "● "
	}
	if entry.invite {
		marker = "✉ "
	}

	base := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if entry.invite {
		base = base.Foreground(model.theme.InviteForeground)
	}
	if selected {
		base = base.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
	}

	label := ansi.Truncate(entry.label, width-len([]rune(marker)), "…")
	rendered := highlightPositions(label, entry.positions, base, base.Background(model.theme.FilterHighlight))
	return base.Render(marker) + rendered
}

// highlightPositions styles the runes at positions with highlight and
// the rest with base.
func highlightPositions(label string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(label)
	}
	var builder strings.Builder
	for index, character := range []rune(label) {
		if _, found := slices.BinarySearch(positions, index); found {
			builder.WriteString(highlight.Render(string(character)))
		} else {
			builder.WriteString(base.Render(string(character)))
		}
	}
	return builder.String()
}

func (model Model) renderDivider() string {
	height := model.bodyHeight()
	style := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	return style.Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
}

func (model Model) renderFormLine() string {
	if model.form != nil {
		return model.form.input.View()
	}
	if model.filter.Active {
		return lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(" / " + model.filter.Input + "▎")
	}
	if model.filter.Input != "" {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" filter: " + model.filter.Input)
	}
	return ""
}

func (model Model) renderStatus() string {
	if model.notice != nil {
		style := lipgloss.NewStyle().Foreground(model.theme.SeverityColor(model.notice.severity))
		return style.Render(ansi.Truncate(model.notice.text, model.width, "…"))
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(ansi.Truncate(model.helpLine(), model.width, "…"))
}

func (model Model) helpLine() string {
	var bindings []key.Binding
	switch model.focus {
	case focusForm:
		bindings = []key.Binding{model.keys.Submit, model.keys.Cancel}
	case focusFilter:
		bindings = []key.Binding{model.keys.Submit, model.keys.FilterClear}
	default:
		bindings = []key.Binding{
			model.keys.Open, model.keys.NewRoom, model.keys.JoinRoom, model.keys.Accept,
			model.keys.Invite, model.keys.Compose, model.keys.FilterActivate, model.keys.Quit,
		}
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " · ")
}
