// Package report renders run results for the terminal and exports the run
// history.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	v1 "github.com/tupyy/expsum/api/v1"
	"github.com/tupyy/expsum/internal/models"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q: want text, json or yaml", s)
	}
}

// Summary is the structured form of a run written by the json and yaml
// renderers.
type Summary struct {
	ID         string        `json:"id,omitempty" yaml:"id,omitempty"`
	Base       int           `json:"base" yaml:"base"`
	Terms      int           `json:"terms" yaml:"terms"`
	Workers    int           `json:"workers" yaml:"workers"`
	Mechanism  string        `json:"mechanism" yaml:"mechanism"`
	Status     string        `json:"status,omitempty" yaml:"status,omitempty"`
	Total      v1.Float      `json:"total" yaml:"total"`
	Completed  int           `json:"completed" yaml:"completed"`
	Failed     int           `json:"failed" yaml:"failed"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Spawned    int           `json:"spawned" yaml:"spawned"`
	MaxLive    int           `json:"maxLive" yaml:"maxLive"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt  *time.Time    `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Results    []TermSummary `json:"results,omitempty" yaml:"results,omitempty"`
}

type TermSummary struct {
	Term  int     `json:"term" yaml:"term"`
	Slot  int     `json:"slot" yaml:"slot"`
	Value float64 `json:"value" yaml:"value"`
	Error string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func NewSummary(run models.Run) Summary {
	s := Summary{
		ID:         run.ID,
		Base:       run.Params.Base,
		Terms:      run.Params.Terms,
		Workers:    run.Params.Workers,
		Mechanism:  run.Params.Mechanism.String(),
		Status:     string(run.Status),
		Total:      v1.Float(run.Result.Total),
		Completed:  run.Result.Completed,
		Failed:     run.Result.Failed,
		Iterations: run.Result.Stats.Iterations,
		Spawned:    run.Result.Stats.Spawned,
		MaxLive:    run.Result.Stats.MaxLive,
		Error:      run.Error,
	}
	if !run.CreatedAt.IsZero() {
		t := run.CreatedAt
		s.CreatedAt = &t
	}
	for _, t := range run.Result.Terms {
		ts := TermSummary{Term: t.Term, Slot: t.Slot, Value: t.Value}
		if t.Err != nil {
			ts.Error = t.Err.Error()
		}
		s.Results = append(s.Results, ts)
	}
	return s
}

// Render writes the final report of run. The text format only writes the
// closing lines; per-term lines come from a Tracer while the run executes.
func Render(w io.Writer, format Format, run models.Run) error {
	switch format {
	case FormatText:
		return renderText(w, run)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewSummary(run))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewSummary(run)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
