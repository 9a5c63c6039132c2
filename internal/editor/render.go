package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/tabedit/internal/grid"
)

// Screen rows outside the body: the header line, the status line and the
// edit line.
const chromeRows = 3

func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	s.SetStyle(e.styleMain)
	s.Clear()
	s.HideCursor()

	e.viewRows = max(0, h-chromeRows)
	e.ensureRowVisible()
	gutter := e.gutterWidth()
	widths := e.columnWidths(w - gutter)
	e.viewCols = len(widths)
	e.gutter, e.widths = gutter, widths

	if h >= chromeRows {
		e.renderHeader(s, gutter, widths)
		for y := range e.viewRows {
			e.renderRow(s, y+1, e.scrollRow+y, gutter, widths, w)
		}
	}
	statusY, editY := h-2, h-1
	if statusY >= 0 {
		e.renderStatusline(s, w, statusY)
	}
	e.renderEditline(s, w, editY)
	s.Show()
}

func (e *Editor) gutterWidth() int {
	return len(strconv.Itoa(max(1, e.rows()))) + 2
}

func (e *Editor) ensureRowVisible() {
	row := e.sel.RowEnd
	if e.viewRows <= 0 {
		return
	}
	if row < e.scrollRow {
		e.scrollRow = row
	}
	if row >= e.scrollRow+e.viewRows {
		e.scrollRow = row - e.viewRows + 1
	}
	e.scrollRow = max(0, e.scrollRow)
}

// columnWidths sizes the columns that fit in avail starting at scrollCol,
// scrolling right first if the cursor column would be off screen.
func (e *Editor) columnWidths(avail int) []int {
	cols := e.cols()
	if cols == 0 || avail <= 0 {
		return nil
	}
	col := max(0, min(e.sel.ColumnEnd, cols-1))
	if col < e.scrollCol {
		e.scrollCol = col
	}
	for {
		widths := e.layout(avail)
		if e.scrollCol+len(widths) > col || e.scrollCol >= col {
			return widths
		}
		e.scrollCol++
	}
}

func (e *Editor) layout(avail int) []int {
	var widths []int
	used := 0
	for c := e.scrollCol; c < e.cols() && used < avail; c++ {
		cw := e.columnWidth
		if hw := runewidth.StringWidth(e.grid.Data(grid.ColumnHeader, 0, c)); hw > cw {
			cw = hw
		}
		for y := range e.viewRows {
			if vw := runewidth.StringWidth(e.grid.Data(grid.Body, e.scrollRow+y, c)); vw > cw {
				cw = vw
			}
		}
		cw = min(cw, e.maxColumnWidth)
		// the column and its separator must fit completely unless it is
		// the only one
		if used+cw+1 > avail && len(widths) > 0 {
			break
		}
		if avail-used-1 <= 0 {
			break
		}
		widths = append(widths, min(cw, avail-used-1))
		used += cw + 1
	}
	return widths
}

func (e *Editor) renderHeader(s tcell.Screen, gutter int, widths []int) {
	clearLine(s, 0, gutter, e.styleHeader)
	x := gutter
	for i, cw := range widths {
		c := e.scrollCol + i
		style := e.styleHeader
		if e.edit != nil && e.edit.region == grid.ColumnHeader && e.edit.col == c {
			style = e.styleEditing
			drawText(s, x, 0, cw, string(e.edit.buf), style)
		} else {
			if e.sel.Normalize().Column <= c && c <= e.sel.Normalize().ColumnEnd {
				style = style.Reverse(true)
			}
			drawText(s, x, 0, cw, e.grid.Data(grid.ColumnHeader, 0, c), style)
		}
		s.SetContent(x+cw, 0, '│', nil, e.styleGridLine)
		x += cw + 1
	}
}

func (e *Editor) renderRow(s tcell.Screen, y, row, gutter int, widths []int, w int) {
	if row >= e.rows() {
		return
	}
	sel := e.sel.Normalize()
	label := e.grid.Data(grid.RowHeader, row, 0)
	gutterStyle := e.styleHeader.Bold(false)
	if sel.Row <= row && row <= sel.RowEnd {
		gutterStyle = gutterStyle.Reverse(true)
	}
	drawText(s, 0, y, gutter-1, fmt.Sprintf("%*s", gutter-1, label), gutterStyle)
	s.SetContent(gutter-1, y, '│', nil, e.styleGridLine)

	x := gutter
	for i, cw := range widths {
		c := e.scrollCol + i
		style := e.styleMain
		text := e.grid.Data(grid.Body, row, c)
		switch {
		case e.edit != nil && e.edit.region == grid.Body && e.editCovers(row, c):
			style = e.styleEditing
			text = string(e.edit.buf)
		case row == e.sel.RowEnd && c == e.sel.ColumnEnd:
			style = e.styleCursor
		case sel.Contains(row, c):
			style = e.styleSelection
		}
		drawText(s, x, y, cw, text, style)
		if x+cw < w {
			s.SetContent(x+cw, y, '│', nil, e.styleGridLine)
		}
		x += cw + 1
	}
}

func (e *Editor) editCovers(row, col int) bool {
	s := e.edit
	return row >= s.row && row < s.row+max(1, s.rowSpan) && col >= s.col && col < s.col+max(1, s.colSpan)
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	mode := "NORMAL"
	if e.mode == ModeEdit {
		mode = "EDIT"
	}
	dirty := ""
	if m, ok := e.grid.(modified); ok && m.Dirty() {
		dirty = "*"
	}
	status := fmt.Sprintf(" %s | %s%s ", mode, e.statusName(), dirty)
	if e.statusMessage != "" {
		status = fmt.Sprintf(" %s | %s%s | %s ", mode, e.statusName(), dirty, e.statusMessage)
	}
	right := fmt.Sprintf(" %s%d", grid.ColumnLabel(e.sel.ColumnEnd), e.sel.RowEnd+1)
	if n := e.sel.Normalize(); n.Rows()*n.Columns() > 1 {
		right += fmt.Sprintf(" (%dx%d)", n.Rows(), n.Columns())
	}
	right += fmt.Sprintf(" | %d rows, %d cols", e.rows(), e.cols())
	if sy, ok := e.grid.(synced); ok && !sy.Synced() {
		right += " | parsing"
	}
	right += " "

	line := composeStatusLine(status, right, w)
	x := 0
	for _, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, e.styleStatus)
		x += max(1, runewidth.RuneWidth(r))
	}
}

// renderEditline shows the full value under edit with the terminal cursor
// in it, or the value of the cursor cell otherwise.
func (e *Editor) renderEditline(s tcell.Screen, w, y int) {
	clearLine(s, y, w, e.styleMain)
	if e.edit == nil {
		if e.rows() > 0 && e.cols() > 0 {
			drawText(s, 0, y, w, " "+e.grid.Data(grid.Body, e.sel.RowEnd, e.sel.ColumnEnd), e.styleMain)
		}
		return
	}
	prompt := "> "
	if e.edit.region == grid.ColumnHeader {
		prompt = "header> "
	}
	before := prompt + displayText(string(e.edit.buf[:e.edit.pos]))
	after := displayText(string(e.edit.buf[e.edit.pos:]))
	// keep the cursor on screen by dropping text on the left
	runes := []rune(before)
	cx := runewidth.StringWidth(before)
	for cx >= w && len(runes) > 0 {
		cx -= runewidth.RuneWidth(runes[0])
		runes = runes[1:]
	}
	before = string(runes)
	drawText(s, 0, y, w, before+after, e.styleMain)
	s.ShowCursor(cx, y)
}

// drawText writes text into a field of width w, padding with spaces and
// marking truncation with an ellipsis.
func drawText(s tcell.Screen, x, y, w int, text string, style tcell.Style) {
	if w <= 0 {
		return
	}
	text = displayText(text)
	if runewidth.StringWidth(text) > w {
		text = runewidth.Truncate(text, w, "…")
	}
	used := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if used+rw > w {
			break
		}
		s.SetContent(x+used, y, r, nil, style)
		used += max(1, rw)
	}
	for ; used < w; used++ {
		s.SetContent(x+used, y, ' ', nil, style)
	}
}

var controlReplacer = strings.NewReplacer("\r\n", "↵", "\n", "↵", "\r", "↵", "\t", " ")

func displayText(s string) string {
	return controlReplacer.Replace(s)
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := max(0, width-len(leftRunes)-len(rightRunes))
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
