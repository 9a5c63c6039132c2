package app

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/tabedit/internal/clipboard"
	"github.com/kobzarvs/tabedit/internal/commands"
	"github.com/kobzarvs/tabedit/internal/config"
	"github.com/kobzarvs/tabedit/internal/editor"
	"github.com/kobzarvs/tabedit/internal/grid"
	"github.com/kobzarvs/tabedit/internal/logger"
	"github.com/kobzarvs/tabedit/internal/model"
	"github.com/kobzarvs/tabedit/internal/session"
)

// pollInterval is how often the file is checked for outside changes.
const pollInterval = time.Second

// App is the top-level runtime for tabedit.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	if err := logger.Init(os.Getenv("TABEDIT_DEBUG") != ""); err == nil {
		defer logger.Close()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dialects, err := config.LoadDialects()
	if err != nil {
		return err
	}

	var path string
	if len(a.args) > 0 {
		path = a.args[0]
	}
	doc, err := openDocument(path, cfg, dialects)
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	reparser := model.NewReparser(cfg.Editor.ReparseDelay(), func() {
		_ = s.PostEvent(tcell.NewEventInterrupt(nil))
	})
	reparser.Start()
	defer reparser.Stop()
	doc.model.SetReparser(reparser)

	stopPoll := make(chan struct{})
	defer close(stopPoll)
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopPoll:
				return
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	opts := editor.Options{
		Commands:  commands.Default(),
		Document:  doc.model,
		Clipboard: clipboard.New(cfg.Editor.SystemClipboard),
	}
	if path != "" {
		opts.Save = doc.save
		opts.Export = doc.exportXLSX
		opts.Reload = doc.reload
	}
	ed := editor.New(cfg, doc.model, opts)
	defer ed.Close()
	ed.SetFileName(path)

	sessions, absPath := openSession(path)
	if sessions != nil {
		defer func() {
			if err := sessions.Stop(); err != nil {
				logger.Warn("app: session not saved", "error", err)
			}
		}()
		if st, ok := sessions.GetFileState(absPath); ok {
			ed.Restore(grid.Selection{
				Row:       st.Row,
				Column:    st.Col,
				RowEnd:    st.RowEnd,
				ColumnEnd: st.ColEnd,
			}, st.ScrollRow, st.ScrollCol)
		}
	}
	remember := func() {
		if sessions == nil {
			return
		}
		sel := ed.Selection()
		row, col := ed.View()
		sessions.SetFileState(absPath, session.FileState{
			Row:       sel.Row,
			Col:       sel.Column,
			RowEnd:    sel.RowEnd,
			ColEnd:    sel.ColumnEnd,
			ScrollRow: row,
			ScrollCol: col,
		})
	}

	quitArmed := false
	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				if doc.model.Dirty() && !quitArmed {
					quitArmed = true
					ed.SetStatus("unsaved changes, quit again to discard them")
					break
				}
				remember()
				return nil
			}
			quitArmed = false
		case *tcell.EventMouse:
			ed.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			select {
			case res := <-reparser.Results():
				doc.model.ApplyParse(res)
			default:
			}
			if path != "" {
				res, err := doc.poll()
				switch {
				case err != nil:
					logger.Warn("app: poll failed", "path", path, "error", err)
				case res == reloaded:
					ed.SetStatus("reloaded from disk")
				case res == conflicted:
					ed.SetStatus("file changed on disk; reload discards your edits, save keeps them")
				}
			}
		}
		ed.Render(s)
	}
}

// openSession returns the session store and the key for path, or nil when
// there is no file or the store cannot be opened.
func openSession(path string) (*session.Manager, string) {
	if path == "" {
		return nil, ""
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	sessions, err := session.NewManager()
	if err != nil {
		logger.Warn("app: session store unavailable", "error", err)
		return nil, ""
	}
	return sessions, absPath
}
