package gallery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NethermindEth/genaiterest/pkg/gallery/codec"
	"github.com/NethermindEth/genaiterest/pkg/gallery/events"
	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

const (
	EventCell = "cell"
	EventDone = "done"
)

// Session is one gallery as seen by the browser. It renders cells by
// keeping their PNGs in memory and publishing them to the hub.
type Session struct {
	ID         string
	Categories []style.Category
	Columns    int
	CreatedAt  time.Time

	hub *events.Hub

	mu     sync.RWMutex
	status Status
	cells  []CellView
	images map[int][]byte
	report *pipeline.Report
	err    error
	done   chan struct{}
}

var _ pipeline.Renderer = (*Session)(nil)

type CellView struct {
	Slot     int            `json:"slot"`
	Column   int            `json:"column"`
	Caption  string         `json:"caption"`
	Category style.Category `json:"category"`
	ImageUrl string         `json:"image_url"`
}

type FailureView struct {
	Stage    pipeline.Stage `json:"stage"`
	Category style.Category `json:"category"`
	Phrase   string         `json:"phrase,omitempty"`
	Error    string         `json:"error"`
}

type ReportView struct {
	Submitted int           `json:"submitted"`
	Rendered  int           `json:"rendered"`
	Elapsed   string        `json:"elapsed"`
	Failures  []FailureView `json:"failures"`
}

type SessionView struct {
	ID         string           `json:"id"`
	Status     Status           `json:"status"`
	Columns    int              `json:"columns"`
	Categories []style.Category `json:"categories"`
	Cells      []CellView       `json:"cells"`
	Report     *ReportView      `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func newSession(id string, categories []style.Category, columns int, hub *events.Hub) *Session {
	return &Session{
		ID:         id,
		Categories: categories,
		Columns:    columns,
		CreatedAt:  time.Now(),
		hub:        hub,
		status:     StatusRunning,
		images:     make(map[int][]byte),
		done:       make(chan struct{}),
	}
}

func (s *Session) Render(ctx context.Context, cell pipeline.Cell) error {
	data, err := codec.EncodePNG(cell.Image)
	if err != nil {
		return err
	}

	view := CellView{
		Slot:     cell.Slot,
		Column:   cell.Column,
		Caption:  cell.Caption,
		Category: cell.Category,
		ImageUrl: fmt.Sprintf("/api/galleries/%s/images/%d", s.ID, cell.Slot),
	}

	s.mu.Lock()
	s.cells = append(s.cells, view)
	s.images[cell.Slot] = data
	s.mu.Unlock()

	s.hub.Publish(s.ID, events.Event{Name: EventCell, Data: view})
	return nil
}

func (s *Session) finish(report *pipeline.Report, err error) {
	s.mu.Lock()
	s.report = report
	s.err = err
	s.status = StatusDone
	if err != nil {
		s.status = StatusFailed
	}
	close(s.done)
	s.mu.Unlock()

	s.hub.Publish(s.ID, events.Event{Name: EventDone, Data: s.Snapshot()})
}

// Done is closed when generation has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Image(slot int) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.images[slot]
	return data, ok
}

func (s *Session) Snapshot() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := SessionView{
		ID:         s.ID,
		Status:     s.status,
		Columns:    s.Columns,
		Categories: s.Categories,
		Cells:      append([]CellView{}, s.cells...),
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	if s.report != nil {
		view.Report = newReportView(s.report)
	}
	return view
}

func newReportView(report *pipeline.Report) *ReportView {
	view := &ReportView{
		Submitted: report.Submitted,
		Rendered:  report.Rendered,
		Elapsed:   report.Elapsed.Round(time.Millisecond).String(),
		Failures:  make([]FailureView, 0, len(report.Failures)),
	}
	for _, f := range report.Failures {
		view.Failures = append(view.Failures, FailureView{
			Stage:    f.Stage,
			Category: f.Category,
			Phrase:   f.Phrase,
			Error:    f.Err.Error(),
		})
	}
	return view
}
