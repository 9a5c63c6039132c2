package model

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kobzarvs/tabedit/internal/dsv"
	"github.com/kobzarvs/tabedit/internal/index"
	"github.com/kobzarvs/tabedit/internal/logger"
	"github.com/kobzarvs/tabedit/internal/overlay"
	"github.com/kobzarvs/tabedit/internal/serialize"
)

// DefaultReparseDelay coalesces a burst of bulk edits into one parse.
const DefaultReparseDelay = time.Second

// Snapshot is an immutable copy of the model state taken at one
// generation. It can be serialized off the UI goroutine.
type Snapshot struct {
	Generation int
	Buffer     *dsv.Buffer
	Rows       []index.Slot
	Columns    []index.Slot
	Values     *overlay.Overlay
}

func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Generation: m.generation,
		Buffer:     m.buf,
		Rows:       m.rows.Slots(),
		Columns:    m.cols.Slots(),
		Values:     m.values.Clone(),
	}
}

func (s Snapshot) Text() string {
	return serialize.Serialize(serialize.Source{Buffer: s.Buffer, Rows: s.Rows, Columns: s.Columns, Values: s.Values})
}

// ParseResult is the outcome of re-parsing a snapshot. Rows and Columns are
// the logical sizes the text was produced from.
type ParseResult struct {
	Generation int
	Text       string
	Buffer     *dsv.Buffer
	Rows       int
	Columns    int
}

// Reparse serializes s and parses the text back with the same dialect.
func Reparse(s Snapshot) ParseResult {
	text := s.Text()
	b := s.Buffer
	buf := dsv.Parse(text, dsv.Options{Delimiter: b.Delimiter(), Quote: b.Quote(), RowDelimiter: b.RowDelimiter()})
	return ParseResult{Generation: s.Generation, Text: text, Buffer: buf, Rows: len(s.Rows), Columns: len(s.Columns)}
}

// Consistent reports whether the parsed shape matches the logical one. A
// grid without columns parses as rows of one empty field.
func (r ParseResult) Consistent() bool {
	got := r.Buffer.Rows()
	if got != r.Rows {
		return false
	}
	if got == 0 {
		return true
	}
	cols := r.Buffer.Columns()
	return cols == r.Columns || (r.Columns == 0 && cols == 1)
}

// ApplyParse acknowledges a finished re-parse on the UI goroutine. Results
// for an older generation are dropped; the current one marks the model as
// synced and is checked against the logical shape.
func (m *Model) ApplyParse(res ParseResult) bool {
	if res.Generation != m.generation {
		logger.Debug("model: stale reparse dropped", "generation", res.Generation, "current", m.generation)
		return false
	}
	m.pending = false
	m.lastText = res.Text
	if !res.Consistent() {
		logger.Error("model: reparse shape mismatch",
			"rows", res.Rows, "parsed-rows", res.Buffer.Rows(),
			"columns", res.Columns, "parsed-columns", res.Buffer.Columns(),
		)
		return false
	}
	logger.Debug("model: reparse applied", "generation", res.Generation, "bytes", len(res.Text))
	return true
}

func (m *Model) scheduleReparse() {
	m.pending = true
	if m.reparser == nil {
		return
	}
	if err := m.reparser.Schedule(m.Snapshot()); err != nil {
		logger.Warn("model: reparse not scheduled", "error", err)
	}
}

// Reparser re-parses snapshots on its own goroutine. Snapshots arriving
// within the delay of each other are coalesced and only the latest one is
// parsed.
type Reparser struct {
	delay   time.Duration
	notify  func()
	log     *zap.Logger
	reqCh   chan Snapshot
	results chan ParseResult
	stopCh  chan struct{}
	once    sync.Once
}

// NewReparser returns a stopped reparser. notify, if set, is called from
// the worker goroutine after a result is published.
func NewReparser(delay time.Duration, notify func()) *Reparser {
	if delay <= 0 {
		delay = DefaultReparseDelay
	}
	return &Reparser{
		delay:   delay,
		notify:  notify,
		log:     logger.Named("reparse"),
		reqCh:   make(chan Snapshot, 8),
		results: make(chan ParseResult, 1),
		stopCh:  make(chan struct{}),
	}
}

func (r *Reparser) Start() {
	go r.loop()
}

func (r *Reparser) Stop() {
	r.once.Do(func() { close(r.stopCh) })
}

// Results delivers finished parses. Only the newest unread result is kept.
func (r *Reparser) Results() <-chan ParseResult { return r.results }

func (r *Reparser) Schedule(s Snapshot) error {
	select {
	case <-r.stopCh:
		return ErrReparseStopped
	default:
	}
	select {
	case r.reqCh <- s:
		return nil
	case <-r.stopCh:
		return ErrReparseStopped
	}
}

func (r *Reparser) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		latest  Snapshot
		waiting bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-r.stopCh:
			return
		case s := <-r.reqCh:
			latest, waiting = s, true
			if timer == nil {
				timer = time.NewTimer(r.delay)
			} else {
				timer.Reset(r.delay)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if !waiting {
				continue
			}
			waiting = false
			r.publish(Reparse(latest))
		}
	}
}

func (r *Reparser) publish(res ParseResult) {
	select {
	case <-r.results:
	default:
	}
	select {
	case r.results <- res:
	default:
	}
	r.log.Debug("done",
		zap.Int("generation", res.Generation),
		zap.Int("rows", res.Buffer.Rows()),
		zap.Int("bytes", len(res.Text)),
	)
	if r.notify != nil {
		r.notify()
	}
}
