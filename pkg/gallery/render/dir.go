package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/NethermindEth/genaiterest/pkg/gallery/codec"
	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
)

const (
	ReportFile  = "report.yaml"
	maxSlugSize = 48
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Dir writes each rendered cell as a PNG into a directory and prints a line
// per cell.
type Dir struct {
	path string
	out  io.Writer

	mu    sync.Mutex
	cells []CellRecord
}

var _ pipeline.Renderer = (*Dir)(nil)

type CellRecord struct {
	Slot     int    `yaml:"slot"`
	Column   int    `yaml:"column"`
	Category string `yaml:"category"`
	Caption  string `yaml:"caption"`
	File     string `yaml:"file"`
}

type FailureRecord struct {
	Stage    string `yaml:"stage"`
	Category string `yaml:"category"`
	Phrase   string `yaml:"phrase,omitempty"`
	Error    string `yaml:"error"`
}

type ReportRecord struct {
	Categories []string        `yaml:"categories"`
	Submitted  int             `yaml:"submitted"`
	Rendered   int             `yaml:"rendered"`
	Elapsed    string          `yaml:"elapsed"`
	Cells      []CellRecord    `yaml:"cells"`
	Failures   []FailureRecord `yaml:"failures,omitempty"`
}

func NewDir(path string, out io.Writer) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if out == nil {
		out = io.Discard
	}
	return &Dir{path: path, out: out}, nil
}

func (d *Dir) Render(ctx context.Context, cell pipeline.Cell) error {
	data, err := codec.EncodePNG(cell.Image)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("slot-%02d_col-%d_%s.png", cell.Slot, cell.Column, slug(cell.Caption))
	if err := os.WriteFile(filepath.Join(d.path, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	d.mu.Lock()
	d.cells = append(d.cells, CellRecord{
		Slot:     cell.Slot,
		Column:   cell.Column,
		Category: cell.Category.String(),
		Caption:  cell.Caption,
		File:     name,
	})
	d.mu.Unlock()

	color.New(color.FgGreen).Fprintf(d.out, "[%02d] ", cell.Slot)
	color.New(color.FgHiBlack).Fprintf(d.out, "col %d  %-22s ", cell.Column, cell.Category)
	fmt.Fprintln(d.out, cell.Caption)

	return nil
}

// WriteReport writes report.yaml and prints the failures.
func (d *Dir) WriteReport(report *pipeline.Report) error {
	if report == nil {
		return errors.New("report is nil")
	}

	d.mu.Lock()
	record := ReportRecord{
		Submitted: report.Submitted,
		Rendered:  report.Rendered,
		Elapsed:   report.Elapsed.String(),
		Cells:     append([]CellRecord(nil), d.cells...),
	}
	d.mu.Unlock()

	for _, c := range report.Categories {
		record.Categories = append(record.Categories, c.String())
	}
	for _, f := range report.Failures {
		record.Failures = append(record.Failures, FailureRecord{
			Stage:    string(f.Stage),
			Category: f.Category.String(),
			Phrase:   f.Phrase,
			Error:    f.Err.Error(),
		})
		color.New(color.FgRed).Fprintf(d.out, "failed %s: ", f.Stage)
		fmt.Fprintln(d.out, f.Error())
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.path, ReportFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	summary := color.New(color.FgGreen, color.Bold)
	if len(report.Failures) > 0 {
		summary = color.New(color.FgYellow, color.Bold)
	}
	summary.Fprintf(d.out, "%d/%d images rendered in %v\n", report.Rendered, report.Submitted, report.Elapsed)

	return nil
}

func slug(caption string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(caption), "-"), "-")
	if len(s) > maxSlugSize {
		s = strings.TrimRight(s[:maxSlugSize], "-")
	}
	if s == "" {
		return "image"
	}
	return s
}
