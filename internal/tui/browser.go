// Package tui is the terminal record browser: a bubbletea program over a
// views.List, with sorting, search, an action menu, confirmed deletes and
// huh forms for adding and editing records.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/views"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Source loads and deletes the records of one owner. The record gateways
// implement it.
type Source[T core.Record] interface {
	List(ctx context.Context, owner string) core.Result[[]T]
	Delete(ctx context.Context, id, owner string) core.Result[core.Empty]
}

// Column is one table column: the record field key and its header.
type Column struct {
	Key   string
	Title string
	Width int
}

// headerLines is the number of lines drawn above the first row.
const headerLines = 3

type loadedMsg[T core.Record] struct {
	res core.Result[[]T]
}

type deletedMsg struct {
	id  string
	res core.Result[core.Empty]
}

type savedMsg[T core.Record] struct {
	res       core.Result[T]
	created   bool
	fieldErrs map[string]string
}

// editState is an open add or edit form.
type editState[T core.Record] struct {
	form     *huh.Form
	collect  func() map[string]string
	submit   submitFunc[T]
	creating bool
}

// Browser is the tea.Model of the record browser.
type Browser[T core.Record] struct {
	ctx     context.Context
	source  Source[T]
	owner   string
	title   string
	columns []Column
	scope   func(T) bool
	editor  *Editor[T]
	editing *editState[T]

	list      *views.List[T]
	cursor    int
	searching bool
	searchCol int
	input     textinput.Model

	width, height int
}

// Options configure a Browser. Scope, when set, narrows the visible records,
// for example to one period. Without an Editor the browser is read and
// delete only.
type Options[T core.Record] struct {
	Title   string
	Owner   string
	Columns []Column
	Scope   func(T) bool
	Editor  *Editor[T]
}

func NewBrowser[T core.Record](ctx context.Context, source Source[T], opts Options[T]) *Browser[T] {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 64
	ti.Width = 30

	return &Browser[T]{
		ctx:     ctx,
		source:  source,
		owner:   opts.Owner,
		title:   opts.Title,
		columns: opts.Columns,
		scope:   opts.Scope,
		editor:  opts.Editor,
		list:    views.NewList[T](),
		input:   ti,
		width:   100,
		height:  30,
	}
}

// List exposes the underlying view state.
func (b *Browser[T]) List() *views.List[T] { return b.list }

// Cursor is the index of the selected visible row.
func (b *Browser[T]) Cursor() int { return b.cursor }

// Editing reports whether an add or edit form is open.
func (b *Browser[T]) Editing() bool { return b.editing != nil }

// Init implements tea.Model.
func (b *Browser[T]) Init() tea.Cmd {
	return b.load()
}

func (b *Browser[T]) load() tea.Cmd {
	b.list.Reload()
	ctx, source, owner := b.ctx, b.source, b.owner
	return func() tea.Msg {
		return loadedMsg[T]{res: source.List(ctx, owner)}
	}
}

func (b *Browser[T]) remove(id string) tea.Cmd {
	ctx, source, owner := b.ctx, b.source, b.owner
	return func() tea.Msg {
		return deletedMsg{id: id, res: source.Delete(ctx, id, owner)}
	}
}

func (b *Browser[T]) visible() []T {
	return b.list.Visible(b.scope)
}

func (b *Browser[T]) selected() (T, bool) {
	rows := b.visible()
	if b.cursor < 0 || b.cursor >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[b.cursor], true
}

func (b *Browser[T]) clampCursor() {
	n := len(b.visible())
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// Update implements tea.Model.
func (b *Browser[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		return b, nil

	case loadedMsg[T]:
		b.list.Loaded(msg.res)
		b.clampCursor()
		return b, nil

	case deletedMsg:
		b.list.Deleted(msg.id, msg.res)
		b.list.Confirm = b.list.Confirm.Cancel()
		b.clampCursor()
		return b, nil

	case savedMsg[T]:
		b.saved(msg)
		return b, nil

	case tea.KeyMsg:
		if b.editing != nil {
			return b.updateForm(msg)
		}
		if b.searching {
			return b.updateSearch(msg)
		}
		return b.updateKeys(msg)
	}
	if b.editing != nil {
		return b.updateForm(msg)
	}
	return b, nil
}

// startEdit opens the add form, or the edit form of rec.
func (b *Browser[T]) startEdit(rec *T) tea.Cmd {
	values, submit := b.editor.open(rec)
	f, collect := NewFieldsForm(b.editor.fields, values)
	if b.width > 0 {
		f = f.WithWidth(min(b.width, 80))
	}
	b.list.Menu = b.list.Menu.Close()
	b.editing = &editState[T]{form: f, collect: collect, submit: submit, creating: rec == nil}
	return f.Init()
}

// updateForm feeds msg to the open form. esc discards it.
func (b *Browser[T]) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		b.editing = nil
		return b, nil
	}
	m, cmd := b.editing.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		b.editing.form = f
	}
	switch b.editing.form.State {
	case huh.StateCompleted:
		return b, b.submitEdit(b.editing.collect())
	case huh.StateAborted:
		b.editing = nil
		return b, nil
	}
	return b, cmd
}

// submitEdit closes the open form and saves values in the background.
func (b *Browser[T]) submitEdit(values map[string]string) tea.Cmd {
	st := b.editing
	b.editing = nil
	if st == nil {
		return nil
	}
	ctx, owner := b.ctx, b.owner
	return func() tea.Msg {
		res, fieldErrs := st.submit(ctx, values, owner)
		return savedMsg[T]{res: res, created: st.creating, fieldErrs: fieldErrs}
	}
}

// saved merges a save result. The list changes only on success.
func (b *Browser[T]) saved(msg savedMsg[T]) {
	if len(msg.fieldErrs) > 0 {
		b.list.Fail(joinFieldErrors(msg.fieldErrs))
		return
	}
	if msg.created {
		b.list.Created(msg.res)
	} else {
		b.list.Updated(msg.res)
	}
	b.clampCursor()
}

func joinFieldErrors(errs map[string]string) string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + errs[name]
	}
	return strings.Join(parts, "; ")
}

func (b *Browser[T]) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// A pending delete takes every key until it is answered.
	if id, ok := b.list.Confirm.Pending(); ok {
		switch key {
		case "y", "Y":
			return b, b.remove(id)
		case "n", "N", "esc":
			b.list.Confirm = b.list.Confirm.Cancel()
		case "ctrl+c":
			return b, tea.Quit
		}
		return b, nil
	}

	switch key {
	case "q", "ctrl+c":
		return b, tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
		b.list.Menu = b.list.Menu.Close()
	case "down", "j":
		if b.cursor < len(b.visible())-1 {
			b.cursor++
		}
		b.list.Menu = b.list.Menu.Close()
	case "enter":
		if r, ok := b.selected(); ok {
			b.list.Menu = b.list.Menu.Toggle(r.RecordID(), b.rowRect(b.cursor), views.Size{Width: b.width, Height: b.height})
		}
	case "esc":
		if b.list.Menu.IsOpen() {
			b.list.Menu = b.list.Menu.Close()
		} else if b.list.Search.Active() {
			b.list.Search.Term = ""
			b.clampCursor()
		}
	case "a":
		if b.editor != nil {
			return b, b.startEdit(nil)
		}
	case "e":
		if r, ok := b.selected(); ok && b.editor != nil {
			return b, b.startEdit(&r)
		}
	case "d", "delete":
		if r, ok := b.selected(); ok {
			b.list.Menu = b.list.Menu.Close()
			b.list.Confirm = b.list.Confirm.Ask(r.RecordID())
		}
	case "/":
		b.searching = true
		b.input.SetValue(b.list.Search.Term)
		b.input.Focus()
		return b, textinput.Blink
	case "x":
		b.list.DismissError()
	case "r":
		return b, b.load()
	default:
		if i, ok := columnIndex(key, len(b.columns)); ok {
			b.list.Sort = b.list.Sort.Toggle(b.columns[i].Key)
			b.cursor = 0
		}
	}
	return b, nil
}

func (b *Browser[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		b.searching = false
		b.input.Blur()
		b.list.Search = views.Search{Column: b.searchColumn(), Term: strings.TrimSpace(b.input.Value())}
		b.cursor = 0
		return b, nil
	case "esc":
		b.searching = false
		b.input.Blur()
		return b, nil
	case "tab":
		if len(b.columns) > 0 {
			b.searchCol = (b.searchCol + 1) % len(b.columns)
		}
		return b, nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Browser[T]) searchColumn() string {
	if len(b.columns) == 0 {
		return ""
	}
	return b.columns[b.searchCol].Key
}

// rowRect is the screen box of visible row i.
func (b *Browser[T]) rowRect(i int) views.Rect {
	top := headerLines + i
	return views.Rect{Top: top, Left: 0, Bottom: top + 1, Right: b.width}
}

// columnIndex maps the keys 1-9 to a column index.
func columnIndex(key string, n int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	i := int(key[0] - '1')
	return i, i < n
}

// View implements tea.Model.
func (b *Browser[T]) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(b.title))
	if b.editing != nil {
		verb := "Edit "
		if b.editing.creating {
			verb = "New "
		}
		s.WriteString("  " + headerStyle.Render(verb+b.editor.title))
		s.WriteString("\n\n")
		s.WriteString(b.editing.form.View())
		s.WriteString("\n")
		s.WriteString(mutedStyle.Render("esc cancel"))
		return s.String()
	}
	if b.list.Status() == views.Loading {
		s.WriteString(mutedStyle.Render("  loading..."))
	}
	s.WriteString("\n")

	var header []string
	for i, c := range b.columns {
		label := fmt.Sprintf("%d %s", i+1, c.Title)
		if b.list.Sort.Key == c.Key {
			if b.list.Sort.Direction == views.Desc {
				label += " v"
			} else {
				label += " ^"
			}
		}
		header = append(header, pad(label, c.Width))
	}
	s.WriteString(headerStyle.Render(strings.Join(header, " ")))
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(strings.Repeat("-", min(b.width, b.lineWidth()))))
	s.WriteString("\n")

	rows := b.visible()
	menuID, menuOpen := b.list.Menu.OpenID()
	for i, r := range rows {
		line := b.renderRow(r)
		menu := ""
		if menuOpen && r.RecordID() == menuID {
			menu = menuStyle.Render(b.menuText())
		}
		if menu != "" && b.list.Menu.Position().Above {
			s.WriteString(menu + "\n")
		}
		if i == b.cursor {
			s.WriteString(selectedStyle.Render(line))
		} else {
			s.WriteString(rowStyle.Render(line))
		}
		s.WriteString("\n")
		if menu != "" && !b.list.Menu.Position().Above {
			s.WriteString(menu + "\n")
		}
	}
	if len(rows) == 0 && b.list.Status() == views.Ready {
		s.WriteString(mutedStyle.Render("no records"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if msg := b.list.Err(); msg != "" {
		s.WriteString(errorStyle.Render(msg) + mutedStyle.Render("  (x to dismiss)"))
		s.WriteString("\n")
	}
	if _, ok := b.list.Confirm.Pending(); ok {
		s.WriteString(confirmStyle.Render("Delete this record? This action cannot be undone. (y/n)"))
		s.WriteString("\n")
	}
	if b.searching {
		s.WriteString(fmt.Sprintf("search %s: %s\n", b.searchColumn(), b.input.View()))
	} else if b.list.Search.Active() {
		s.WriteString(mutedStyle.Render(fmt.Sprintf("filter %s contains %q (esc clears)", b.list.Search.Column, b.list.Search.Term)))
		s.WriteString("\n")
	}
	help := "j/k move  1-9 sort  / search  enter menu  d delete  r reload  q quit"
	if b.editor != nil {
		help = "j/k move  1-9 sort  / search  enter menu  a add  e edit  d delete  r reload  q quit"
	}
	s.WriteString(mutedStyle.Render(help))
	return s.String()
}

func (b *Browser[T]) menuText() string {
	if b.editor != nil {
		return "e edit   d delete   esc close"
	}
	return "d delete   esc close"
}

func (b *Browser[T]) renderRow(r T) string {
	cells := make([]string, len(b.columns))
	for i, c := range b.columns {
		cells[i] = pad(views.FieldText(r, c.Key), c.Width)
	}
	return strings.Join(cells, " ")
}

func (b *Browser[T]) lineWidth() int {
	w := 0
	for _, c := range b.columns {
		w += c.Width + 1
	}
	return w
}

// pad truncates or right-pads s to width cells.
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	if w := lipgloss.Width(s); w > width {
		runes := []rune(s)
		if width > 1 && len(runes) >= width {
			return string(runes[:width-1]) + "~"
		}
		return string(runes[:min(len(runes), width)])
	} else if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Run starts the browser full screen and blocks until it quits.
func Run(m tea.Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
