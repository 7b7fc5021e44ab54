package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/tupyy/expsum/internal/models"
)

var (
	traceColor = color.New(color.FgCyan)
	failColor  = color.New(color.FgRed)
	totalColor = color.New(color.Bold)
)

// Tracer prints one line per settled term, in the order terms settle.
type Tracer struct {
	w    io.Writer
	base int
}

func NewTracer(w io.Writer, base int) *Tracer {
	return &Tracer{w: w, base: base}
}

// Observe matches the dispatcher observer signature.
func (t *Tracer) Observe(r models.TermResult) {
	prefix := fmt.Sprintf("worker %d: %d^%d / %d! : ", r.Slot, t.base, r.Term, r.Term)
	if r.Err != nil {
		_, _ = failColor.Fprintf(t.w, "%sfailed (%v)\n", prefix, r.Err)
		return
	}
	_, _ = traceColor.Fprintf(t.w, "%s%.4f\n", prefix, r.Value)
}

func renderText(w io.Writer, run models.Run) error {
	if run.Result.Failed > 0 {
		if _, err := failColor.Fprintf(w, "%d of %d terms failed\n", run.Result.Failed, run.Result.Target); err != nil {
			return err
		}
	}
	_, err := totalColor.Fprintf(w, "Final Result : %.4f\n", run.Result.Total)
	return err
}
