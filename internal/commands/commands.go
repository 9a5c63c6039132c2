// Package commands maps named intents onto document mutations. A Table is
// built once and handed to the editor; there is no global registry.
package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/logger"
)

// Document is the mutation surface commands drive. *model.Model
// satisfies it.
type Document interface {
	Rows() int
	Columns() int
	InsertRows(at, count int) bool
	RemoveRows(at, count int) bool
	MoveRows(start, end, span int) bool
	InsertColumns(at, count int) bool
	RemoveColumns(at, count int) bool
	MoveColumns(start, end, span int) bool
	ClearCells(sel grid.Selection) bool
	ClearRows(sel grid.Selection) bool
	ClearColumns(sel grid.Selection) bool
	Copy(sel grid.Selection) string
	Cut(sel grid.Selection) (string, bool)
	Paste(row, col int, text string) bool
	Undo() bool
	Redo() bool
}

type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}

// Context is what a command sees when it runs.
type Context struct {
	Doc       Document
	Selection grid.Selection
	Clipboard Clipboard
	// Save, Export and Reload are supplied by the application; nil means
	// the document has no file behind it.
	Save   func() error
	Export func() error
	Reload func() error
	// Message is set by handlers that want to report something.
	Message string
}

type Handler func(ctx *Context) error

type Table map[string]Handler

// Names lists the table's commands in sorted order.
func (t Table) Names() []string {
	return slices.Sorted(maps.Keys(t))
}

func (t Table) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Run executes the named command.
func (t Table) Run(name string, ctx *Context) error {
	h, ok := t[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	logger.Debug("commands: run", "name", name, "selection", ctx.Selection)
	if err := h(ctx); err != nil {
		logger.Debug("commands: failed", "name", name, "error", err)
		return err
	}
	return nil
}

// Default returns the standard command table.
func Default() Table {
	return Table{
		"insert-row-above":    insertRowAbove,
		"insert-row-below":    insertRowBelow,
		"insert-column-left":  insertColumnLeft,
		"insert-column-right": insertColumnRight,
		"remove-row":          removeRow,
		"remove-column":       removeColumn,
		"move-row-up":         moveRowUp,
		"move-row-down":       moveRowDown,
		"move-column-left":    moveColumnLeft,
		"move-column-right":   moveColumnRight,
		"cut":                 cut,
		"copy":                copyCells,
		"paste":               paste,
		"clear-cells":         clearCells,
		"clear-rows":          clearRows,
		"clear-columns":       clearColumns,
		"undo":                undo,
		"redo":                redo,
		"save":                save,
		"export-xlsx":         exportXLSX,
		"reload":              reload,
	}
}

func insertRowAbove(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	ctx.Doc.InsertRows(sel.Row, sel.Rows())
	return nil
}

func insertRowBelow(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	at := sel.RowEnd + 1
	if ctx.Doc.Rows() == 0 {
		at = 0
	}
	ctx.Doc.InsertRows(at, sel.Rows())
	return nil
}

func insertColumnLeft(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	ctx.Doc.InsertColumns(sel.Column, sel.Columns())
	return nil
}

func insertColumnRight(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	at := sel.ColumnEnd + 1
	if ctx.Doc.Columns() == 0 {
		at = 0
	}
	ctx.Doc.InsertColumns(at, sel.Columns())
	return nil
}

func removeRow(ctx *Context) error {
	if ctx.Doc.Rows() == 0 {
		return ErrEmptyGrid
	}
	sel := ctx.Selection.Normalize()
	ctx.Doc.RemoveRows(sel.Row, sel.Rows())
	return nil
}

func removeColumn(ctx *Context) error {
	if ctx.Doc.Columns() == 0 {
		return ErrEmptyGrid
	}
	sel := ctx.Selection.Normalize()
	ctx.Doc.RemoveColumns(sel.Column, sel.Columns())
	return nil
}

func moveRowUp(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	if sel.Row > 0 {
		ctx.Doc.MoveRows(sel.Row, sel.Row-1, sel.Rows())
	}
	return nil
}

func moveRowDown(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	if sel.RowEnd+1 < ctx.Doc.Rows() {
		ctx.Doc.MoveRows(sel.Row, sel.RowEnd+1, sel.Rows())
	}
	return nil
}

func moveColumnLeft(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	if sel.Column > 0 {
		ctx.Doc.MoveColumns(sel.Column, sel.Column-1, sel.Columns())
	}
	return nil
}

func moveColumnRight(ctx *Context) error {
	sel := ctx.Selection.Normalize()
	if sel.ColumnEnd+1 < ctx.Doc.Columns() {
		ctx.Doc.MoveColumns(sel.Column, sel.ColumnEnd+1, sel.Columns())
	}
	return nil
}

func copyCells(ctx *Context) error {
	if ctx.Doc.Rows() == 0 || ctx.Doc.Columns() == 0 {
		return ErrEmptyGrid
	}
	if err := ctx.Clipboard.Write(ctx.Doc.Copy(ctx.Selection)); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	ctx.Message = fmt.Sprintf("copied %dx%d", ctx.Selection.Rows(), ctx.Selection.Columns())
	return nil
}

func cut(ctx *Context) error {
	if ctx.Doc.Rows() == 0 || ctx.Doc.Columns() == 0 {
		return ErrEmptyGrid
	}
	text, _ := ctx.Doc.Cut(ctx.Selection)
	if err := ctx.Clipboard.Write(text); err != nil {
		return fmt.Errorf("cut: %w", err)
	}
	return nil
}

func paste(ctx *Context) error {
	text, err := ctx.Clipboard.Read()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	sel := ctx.Selection.Normalize()
	ctx.Doc.Paste(sel.Row, sel.Column, text)
	return nil
}

func clearCells(ctx *Context) error {
	ctx.Doc.ClearCells(ctx.Selection)
	return nil
}

func clearRows(ctx *Context) error {
	ctx.Doc.ClearRows(ctx.Selection)
	return nil
}

func clearColumns(ctx *Context) error {
	ctx.Doc.ClearColumns(ctx.Selection)
	return nil
}

func undo(ctx *Context) error {
	if !ctx.Doc.Undo() {
		return ErrNothingToUndo
	}
	return nil
}

func redo(ctx *Context) error {
	if !ctx.Doc.Redo() {
		return ErrNothingToRedo
	}
	return nil
}

func save(ctx *Context) error {
	if ctx.Save == nil {
		return ErrNoFileName
	}
	if err := ctx.Save(); err != nil {
		return err
	}
	ctx.Message = "written"
	return nil
}

func exportXLSX(ctx *Context) error {
	if ctx.Export == nil {
		return ErrNoFileName
	}
	if err := ctx.Export(); err != nil {
		return err
	}
	ctx.Message = "exported"
	return nil
}

// reload discards edits and history and reads the file again.
func reload(ctx *Context) error {
	if ctx.Reload == nil {
		return ErrNoFileName
	}
	if err := ctx.Reload(); err != nil {
		return err
	}
	ctx.Message = "reloaded"
	return nil
}
