package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kobzarvs/tabedit/internal/config"
	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/export"
	"github.com/kobzarvs/tabedit/internal/logger"
	"github.com/kobzarvs/tabedit/internal/model"
)

// document ties a model to the file it was read from.
type document struct {
	path    string
	model   *model.Model
	modTime time.Time
	size    int64
}

// parseOptions picks the delimiter and quote for path. A matching dialect
// wins, then the configured delimiter, then the file extension, and
// finally a guess from the text itself.
func parseOptions(path, text string, ed config.EditorOptions, dialects config.Dialects) dsv.Options {
	opts := dsv.Options{Quote: ed.QuoteByte()}
	if d := dialects.Match(path); d != nil {
		if q, ok := d.QuoteByte(); ok {
			opts.Quote = q
		}
		if delim, ok := d.DelimiterByte(); ok {
			opts.Delimiter = delim
			return opts
		}
	}
	if delim, ok := ed.DelimiterByte(); ok {
		opts.Delimiter = delim
		return opts
	}
	if delim, ok := dsv.DelimiterForPath(path); ok {
		opts.Delimiter = delim
		return opts
	}
	opts.Delimiter = dsv.Sniff(text, opts.Quote)
	return opts
}

// openDocument reads path. A missing file opens as an empty document that
// is created on the first save.
func openDocument(path string, cfg config.Config, dialects config.Dialects) (*document, error) {
	d := &document{path: path}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, err := os.Stat(path); err == nil {
			d.modTime, d.size = info.ModTime(), info.Size()
		}
	case errors.Is(err, os.ErrNotExist):
		data = nil
	default:
		return nil, err
	}
	text := string(data)
	opts := model.Options{
		Parse:          parseOptions(path, text, cfg.Editor, dialects),
		ResetThreshold: cfg.Editor.ResetThreshold,
	}
	d.model = model.New(text, opts)
	logger.Info("app: opened", "path", path, "rows", d.model.Rows(), "columns", d.model.Columns(),
		"delimiter", string(opts.Parse.Delimiter))
	return d, nil
}

// save writes the serialized model next to the target and renames it into
// place.
func (d *document) save() error {
	text := d.model.Text()
	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save: %w", err)
	}
	if info, err := os.Stat(d.path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save: %w", err)
	}
	d.model.MarkSaved(text)
	if info, err := os.Stat(d.path); err == nil {
		d.modTime, d.size = info.ModTime(), info.Size()
	}
	logger.Info("app: saved", "path", d.path, "bytes", len(text))
	return nil
}

func (d *document) exportPath() string {
	return strings.TrimSuffix(d.path, filepath.Ext(d.path)) + ".xlsx"
}

func (d *document) exportXLSX() error {
	path := d.exportPath()
	if err := export.XLSX(d.model, path); err != nil {
		return err
	}
	logger.Info("app: exported", "path", path)
	return nil
}

type pollResult int

const (
	unchanged pollResult = iota
	reloaded
	// conflicted means the file changed while the model has unsaved
	// edits. The model is left alone until reload or save.
	conflicted
)

// poll checks the file for changes made since it was last read or
// written. A clean model takes the new text; a dirty one is kept and the
// change is reported once.
func (d *document) poll() (pollResult, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return unchanged, nil
		}
		return unchanged, err
	}
	if info.ModTime().Equal(d.modTime) && info.Size() == d.size {
		return unchanged, nil
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return unchanged, err
	}
	d.modTime, d.size = info.ModTime(), info.Size()
	if d.model.Dirty() {
		logger.Info("app: file changed under unsaved edits", "path", d.path)
		return conflicted, nil
	}
	if !d.model.Reload(string(data)) {
		return unchanged, nil
	}
	logger.Info("app: reloaded", "path", d.path)
	return reloaded, nil
}

// reload reads the file again, discarding edits and history.
func (d *document) reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if info, err := os.Stat(d.path); err == nil {
		d.modTime, d.size = info.ModTime(), info.Size()
	}
	d.model.Replace(string(data))
	logger.Info("app: reloaded on request", "path", d.path)
	return nil
}
