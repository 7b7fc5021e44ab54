package dispatcher

// Aggregator accumulates folded values. It has no rollback: a folded value
// stays folded.
type Aggregator struct {
	total     float64
	completed int
	failed    int
	target    int
}

func NewAggregator(target int) *Aggregator {
	return &Aggregator{target: target}
}

func (a *Aggregator) Fold(v float64) {
	a.total += v
	a.completed++
}

// Fail counts a term that settled without a value.
func (a *Aggregator) Fail() {
	a.failed++
}

func (a *Aggregator) Total() float64 { return a.total }

func (a *Aggregator) Completed() int { return a.completed }

func (a *Aggregator) Failed() int { return a.failed }

func (a *Aggregator) Target() int { return a.target }

// Done reports whether every term was folded.
func (a *Aggregator) Done() bool {
	return a.completed >= a.target
}

// Settled reports whether every term was either folded or failed.
func (a *Aggregator) Settled() bool {
	return a.completed+a.failed >= a.target
}
