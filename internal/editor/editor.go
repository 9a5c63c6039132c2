// Package editor is a terminal grid view. It reads everything it draws
// through grid.DataModel and sends every change back through SetData or
// the command table.
package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/tabedit/internal/commands"
	"github.com/kobzarvs/tabedit/internal/config"
	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/logger"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit
)

const (
	actionMoveLeft          = "move_left"
	actionMoveRight         = "move_right"
	actionMoveUp            = "move_up"
	actionMoveDown          = "move_down"
	actionExtendLeft        = "extend_left"
	actionExtendRight       = "extend_right"
	actionExtendUp          = "extend_up"
	actionExtendDown        = "extend_down"
	actionRowStart          = "row_start"
	actionRowEnd            = "row_end"
	actionGridStart         = "grid_start"
	actionGridEnd           = "grid_end"
	actionPageUp            = "page_up"
	actionPageDown          = "page_down"
	actionEditCell          = "edit_cell"
	actionEditHeader        = "edit_header"
	actionCollapseSelection = "collapse_selection"
	actionQuit              = "quit"

	actionCommitEdit      = "commit_edit"
	actionCommitEditRight = "commit_edit_right"
	actionCancelEdit      = "cancel_edit"
	actionCursorLeft      = "cursor_left"
	actionCursorRight     = "cursor_right"
	actionCursorStart     = "cursor_start"
	actionCursorEnd       = "cursor_end"
	actionDeleteBack      = "delete_back"
	actionDeleteForward   = "delete_forward"
	actionDeleteToStart   = "delete_to_start"
	actionPaste           = "paste"
)

// Options connects the editor to the rest of the application.
type Options struct {
	Commands commands.Table
	// Document receives command mutations. It is usually the same value
	// as the grid.
	Document  commands.Document
	Clipboard commands.Clipboard
	Save      func() error
	Export    func() error
	Reload    func() error
}

type keymapSet struct {
	normal map[string]string
	edit   map[string]string
}

// selector is implemented by grids that keep a selection of their own so
// that undo can put it back.
type selector interface {
	Selection() grid.Selection
	SetSelection(grid.Selection)
}

type modified interface{ Dirty() bool }

type synced interface{ Synced() bool }

type Editor struct {
	grid     grid.DataModel
	opts     Options
	keymap   keymapSet
	mode     Mode
	filename string

	// sel.Row/Column is the anchor, sel.RowEnd/ColumnEnd the cell the
	// cursor is on.
	sel       grid.Selection
	scrollRow int
	scrollCol int
	viewRows  int
	viewCols  int
	gutter    int
	widths    []int

	edit          *editSession
	statusMessage string
	unsubscribe   func()

	columnWidth    int
	maxColumnWidth int

	styleMain      tcell.Style
	styleHeader    tcell.Style
	styleSelection tcell.Style
	styleCursor    tcell.Style
	styleStatus    tcell.Style
	styleEditing   tcell.Style
	styleGridLine  tcell.Style

	// actionHook observes every dispatched action; tests use it.
	actionHook func(action string)
}

func New(cfg config.Config, g grid.DataModel, opts Options) *Editor {
	normal := make(map[string]string, len(cfg.Keymap.Normal))
	for k, v := range cfg.Keymap.Normal {
		normal[k] = v
	}
	edit := make(map[string]string, len(cfg.Keymap.Edit))
	for k, v := range cfg.Keymap.Edit {
		edit[k] = v
	}
	if opts.Commands == nil {
		opts.Commands = commands.Default()
	}
	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	headerFg := parseColor(cfg.Theme.HeaderForeground, mainFg)
	headerBg := parseColor(cfg.Theme.HeaderBackground, mainBg)
	selectionFg := parseColor(cfg.Theme.SelectionForeground, mainFg)
	selectionBg := parseColor(cfg.Theme.SelectionBackground, mainBg)
	cursorFg := parseColor(cfg.Theme.CursorForeground, mainBg)
	cursorBg := parseColor(cfg.Theme.CursorBackground, mainFg)
	statusFg := parseColor(cfg.Theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatuslineBackground, tcell.ColorGray)
	editingFg := parseColor(cfg.Theme.EditingForeground, tcell.ColorBlack)
	editingBg := parseColor(cfg.Theme.EditingBackground, tcell.ColorYellow)
	gridLineFg := parseColor(cfg.Theme.GridLineForeground, tcell.ColorGray)

	columnWidth := max(3, cfg.Editor.ColumnWidth)
	e := &Editor{
		grid:           g,
		opts:           opts,
		keymap:         keymapSet{normal: normal, edit: edit},
		mode:           ModeNormal,
		columnWidth:    columnWidth,
		maxColumnWidth: max(columnWidth, cfg.Editor.MaxColumnWidth),
		styleMain:      tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
		styleHeader:    tcell.StyleDefault.Foreground(headerFg).Background(headerBg).Bold(true),
		styleSelection: tcell.StyleDefault.Foreground(selectionFg).Background(selectionBg),
		styleCursor:    tcell.StyleDefault.Foreground(cursorFg).Background(cursorBg),
		styleStatus:    tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		styleEditing:   tcell.StyleDefault.Foreground(editingFg).Background(editingBg),
		styleGridLine:  tcell.StyleDefault.Foreground(gridLineFg).Background(mainBg),
	}
	if s, ok := g.(selector); ok {
		e.sel = s.Selection()
	}
	e.unsubscribe = g.Subscribe(e.onChange)
	return e
}

// Close detaches the editor from its grid.
func (e *Editor) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Editor) SetFileName(path string) { e.filename = path }

func (e *Editor) Mode() Mode { return e.mode }

// Selection returns the selected body cells.
func (e *Editor) Selection() grid.Selection { return e.sel }

// View reports the top-left body cell on screen.
func (e *Editor) View() (row, col int) { return e.scrollRow, e.scrollCol }

// Restore puts the cursor and viewport back, clamped to the grid.
func (e *Editor) Restore(sel grid.Selection, scrollRow, scrollCol int) {
	e.sel = sel.Clamp(e.rows(), e.cols())
	e.scrollRow = max(0, min(scrollRow, e.rows()-1))
	e.scrollCol = max(0, min(scrollCol, e.cols()-1))
	e.pushSelection()
}

func (e *Editor) rows() int { return e.grid.RowCount(grid.Body) }
func (e *Editor) cols() int { return e.grid.ColumnCount(grid.Body) }

func (e *Editor) SetStatus(msg string) {
	e.statusMessage = msg
}

// HandleKey processes one key. It returns true when the editor wants to
// quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.mode == ModeNormal {
		e.statusMessage = ""
	}
	switch e.mode {
	case ModeEdit:
		return e.handleEdit(ev)
	default:
		return e.handleNormal(ev)
	}
}

func (e *Editor) HandleMouse(ev *tcell.EventMouse) {
	switch ev.Buttons() {
	case tcell.WheelUp:
		e.scrollRow = max(0, e.scrollRow-3)
		e.moveCursor(-3, 0, false)
	case tcell.WheelDown:
		e.moveCursor(3, 0, false)
	case tcell.Button1:
		if e.mode == ModeEdit {
			e.commitEdit()
		}
		x, y := ev.Position()
		row, col, ok := e.cellAt(x, y)
		if !ok {
			return
		}
		if ev.Modifiers()&tcell.ModShift != 0 {
			e.sel.RowEnd, e.sel.ColumnEnd = row, col
			return
		}
		e.setCursor(row, col)
	}
}

// cellAt maps a screen position from the last frame to a body cell.
func (e *Editor) cellAt(x, y int) (row, col int, ok bool) {
	if y < 1 || y > e.viewRows || x < e.gutter {
		return 0, 0, false
	}
	row = e.scrollRow + y - 1
	if row >= e.rows() {
		return 0, 0, false
	}
	left := e.gutter
	for i, cw := range e.widths {
		if x < left+cw+1 {
			return row, e.scrollCol + i, true
		}
		left += cw + 1
	}
	return 0, 0, false
}

func (e *Editor) handleNormal(ev *tcell.EventKey) bool {
	key := keyString(ev)
	if action, ok := e.keymap.normal[key]; ok {
		return e.dispatch(action)
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModMeta|tcell.ModAlt) == 0 {
		e.beginEdit(grid.Body, "")
		if e.edit != nil {
			e.edit.insert(ev.Rune())
		}
	}
	return false
}

func (e *Editor) handleEdit(ev *tcell.EventKey) bool {
	key := keyString(ev)
	if action, ok := e.keymap.edit[key]; ok {
		return e.dispatch(action)
	}
	if ev.Key() == tcell.KeyRune && e.edit != nil {
		e.edit.insert(ev.Rune())
	}
	return false
}

func (e *Editor) dispatch(action string) bool {
	if e.actionHook != nil {
		e.actionHook(action)
	}
	if e.mode == ModeEdit {
		return e.execEditAction(action)
	}
	if e.opts.Commands.Has(action) {
		e.runCommand(action)
		return false
	}
	return e.execAction(action)
}

func (e *Editor) execAction(action string) bool {
	switch action {
	case actionMoveLeft:
		e.moveCursor(0, -1, false)
	case actionMoveRight:
		e.moveCursor(0, 1, false)
	case actionMoveUp:
		e.moveCursor(-1, 0, false)
	case actionMoveDown:
		e.moveCursor(1, 0, false)
	case actionExtendLeft:
		e.moveCursor(0, -1, true)
	case actionExtendRight:
		e.moveCursor(0, 1, true)
	case actionExtendUp:
		e.moveCursor(-1, 0, true)
	case actionExtendDown:
		e.moveCursor(1, 0, true)
	case actionRowStart:
		e.moveCursor(0, -e.sel.ColumnEnd, false)
	case actionRowEnd:
		e.moveCursor(0, e.cols()-1-e.sel.ColumnEnd, false)
	case actionGridStart:
		e.setCursor(0, 0)
	case actionGridEnd:
		e.setCursor(e.rows()-1, e.cols()-1)
	case actionPageUp:
		e.moveCursor(-max(1, e.viewRows-1), 0, false)
	case actionPageDown:
		e.moveCursor(max(1, e.viewRows-1), 0, false)
	case actionEditCell:
		e.beginEdit(grid.Body, e.grid.Data(grid.Body, e.sel.RowEnd, e.sel.ColumnEnd))
	case actionEditHeader:
		e.beginEdit(grid.ColumnHeader, e.grid.Data(grid.ColumnHeader, 0, e.sel.ColumnEnd))
	case actionCollapseSelection:
		e.setCursor(e.sel.RowEnd, e.sel.ColumnEnd)
	case actionQuit:
		return true
	default:
		e.SetStatus("unknown action: " + action)
		logger.Debug("editor: unknown action", "action", action)
	}
	return false
}

func (e *Editor) execEditAction(action string) bool {
	s := e.edit
	if s == nil {
		e.mode = ModeNormal
		return false
	}
	switch action {
	case actionCommitEdit:
		e.commitEdit()
		e.moveCursor(1, 0, false)
	case actionCommitEditRight:
		e.commitEdit()
		e.moveCursor(0, 1, false)
	case actionCancelEdit:
		e.cancelEdit()
	case actionCursorLeft:
		s.pos = max(0, s.pos-1)
	case actionCursorRight:
		s.pos = min(len(s.buf), s.pos+1)
	case actionCursorStart:
		s.pos = 0
	case actionCursorEnd:
		s.pos = len(s.buf)
	case actionDeleteBack:
		s.deleteBack()
	case actionDeleteForward:
		s.deleteForward()
	case actionDeleteToStart:
		s.buf = slices.Delete(s.buf, 0, s.pos)
		s.pos = 0
	case actionPaste:
		// a paste replaces cells, so whatever was typed is dropped
		e.cancelEdit()
		e.runCommand(commandPaste)
	case actionQuit:
		e.cancelEdit()
		return true
	default:
		if e.opts.Commands.Has(action) {
			e.cancelEdit()
			e.runCommand(action)
		}
	}
	return false
}

const commandPaste = "paste"

func (e *Editor) runCommand(name string) {
	if e.opts.Document == nil {
		e.SetStatus("read only")
		return
	}
	e.pushSelection()
	ctx := &commands.Context{
		Doc:       e.opts.Document,
		Selection: e.sel,
		Clipboard: e.opts.Clipboard,
		Save:      e.opts.Save,
		Export:    e.opts.Export,
		Reload:    e.opts.Reload,
	}
	err := e.opts.Commands.Run(name, ctx)
	if s, ok := e.grid.(selector); ok {
		e.sel = s.Selection()
	}
	e.sel = e.sel.Clamp(e.rows(), e.cols())
	switch {
	case errors.Is(err, commands.ErrNothingToUndo), errors.Is(err, commands.ErrNothingToRedo):
		e.SetStatus(err.Error())
	case err != nil:
		logger.Warn("editor: command failed", "command", name, "error", err)
		e.SetStatus(fmt.Sprintf("%s: %v", name, err))
	case ctx.Message != "":
		e.SetStatus(ctx.Message)
	}
}

func (e *Editor) pushSelection() {
	if s, ok := e.grid.(selector); ok {
		s.SetSelection(e.sel)
	}
}

// moveCursor shifts the cursor cell. When extend is false the selection
// collapses onto it.
func (e *Editor) moveCursor(dr, dc int, extend bool) {
	rows, cols := e.rows(), e.cols()
	if rows == 0 || cols == 0 {
		return
	}
	r := max(0, min(e.sel.RowEnd+dr, rows-1))
	c := max(0, min(e.sel.ColumnEnd+dc, cols-1))
	if extend {
		e.sel.RowEnd, e.sel.ColumnEnd = r, c
		return
	}
	e.sel = grid.Cell(r, c)
}

func (e *Editor) setCursor(row, col int) {
	e.sel = grid.Cell(row, col).Clamp(e.rows(), e.cols())
}

func (e *Editor) beginEdit(region grid.Region, value string) {
	if region == grid.Body && (e.rows() == 0 || e.cols() == 0) {
		e.SetStatus("no cells; insert a row first")
		return
	}
	if region == grid.ColumnHeader && e.cols() == 0 {
		return
	}
	sel := e.sel.Normalize()
	e.edit = &editSession{
		region:   region,
		row:      e.sel.RowEnd,
		col:      e.sel.ColumnEnd,
		original: value,
		buf:      []rune(value),
	}
	if region == grid.Body && sel.Rows()*sel.Columns() > 1 {
		e.edit.row, e.edit.col = sel.Row, sel.Column
		e.edit.rowSpan, e.edit.colSpan = sel.Rows(), sel.Columns()
	}
	e.edit.pos = len(e.edit.buf)
	e.mode = ModeEdit
}

func (e *Editor) commitEdit() {
	s := e.edit
	e.edit = nil
	e.mode = ModeNormal
	if s == nil {
		return
	}
	value := string(s.buf)
	if value == s.original && s.rowSpan <= 1 && s.colSpan <= 1 {
		return
	}
	e.pushSelection()
	if !e.grid.SetData(s.region, s.row, s.col, value, max(1, s.rowSpan), max(1, s.colSpan)) {
		logger.Debug("editor: edit not applied", "region", s.region, "row", s.row, "col", s.col)
	}
}

func (e *Editor) cancelEdit() {
	e.edit = nil
	e.mode = ModeNormal
}

// onChange runs while the grid is notifying; it must not call back into
// the grid's mutators.
func (e *Editor) onChange(c grid.Change) {
	if e.edit != nil && !e.edit.follow(c) {
		e.cancelEdit()
		e.SetStatus("edit cancelled: the cell changed")
	}
	if s, ok := e.grid.(selector); ok && c.Kind != grid.CellsChanged {
		e.sel = s.Selection()
	}
	rows, cols := e.rows(), e.cols()
	e.sel = e.sel.Clamp(rows, cols)
	e.scrollRow = max(0, min(e.scrollRow, rows-1))
	e.scrollCol = max(0, min(e.scrollCol, cols-1))
}

func (e *Editor) statusName() string {
	if e.filename == "" {
		return "[No Name]"
	}
	return filepath.Base(e.filename)
}
