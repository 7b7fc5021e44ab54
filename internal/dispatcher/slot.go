package dispatcher

import (
	"github.com/tupyy/expsum/internal/models"
)

// Slot is one pool position. Its worker and channel change with every
// generation; its index never does.
type Slot struct {
	index       int
	term        int
	state       models.SlotState
	generations int
	err         error
	worker      Worker
	buf         []byte
	// readErr is the channel failure of the generation being reaped.
	readErr error
}

func newSlot(index int) *Slot {
	return &Slot{index: index, term: -1, state: models.SlotIdle}
}

func (s *Slot) Index() int { return s.index }

func (s *Slot) Status() models.SlotStatus {
	return models.SlotStatus{
		Index:       s.index,
		State:       s.state,
		Term:        s.term,
		Generations: s.generations,
		Error:       s.err,
	}
}

func (s *Slot) attach(term int, w Worker) {
	s.term = term
	s.worker = w
	s.state = models.SlotRunning
	s.generations++
	s.err = nil
	s.readErr = nil
	s.buf = s.buf[:0]
}

func (s *Slot) detach() {
	s.worker = nil
}

func (s *Slot) markFailed(term int, err error) {
	s.term = term
	s.state = models.SlotFailed
	s.err = err
}

func (s *Slot) retire() {
	s.worker = nil
	s.state = models.SlotRetired
}
