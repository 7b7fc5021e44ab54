package v1

import (
	"github.com/tupyy/expsum/internal/models"
)

func (r RunRequest) ToModel() models.RunParams {
	return models.RunParams{
		Base:      r.Base,
		Terms:     r.Terms,
		Workers:   r.Workers,
		Mechanism: models.Mechanism(r.Mechanism),
	}
}

// NewRunFromModel converts a models.Run to an API Run.
func NewRunFromModel(run models.Run) Run {
	apiRun := Run{
		Id:        run.ID,
		Base:      run.Params.Base,
		Terms:     run.Params.Terms,
		Workers:   run.Params.Workers,
		Mechanism: run.Params.Mechanism.String(),
		Status:    RunStatus(run.Status),
		Total:     Float(run.Result.Total),
		Completed: run.Result.Completed,
		Failed:    run.Result.Failed,
		Stats: RunStats{
			Iterations: run.Result.Stats.Iterations,
			Spawned:    run.Result.Stats.Spawned,
			MaxLive:    run.Result.Stats.MaxLive,
		},
		CreatedAt:  run.CreatedAt,
		FinishedAt: run.FinishedAt,
	}

	if run.Error != "" {
		apiRun.Error = &run.Error
	}

	return apiRun
}

func NewTermFromModel(t models.TermResult) Term {
	term := Term{
		Term:  t.Term,
		Slot:  t.Slot,
		Value: t.Value,
	}
	if t.Err != nil {
		msg := t.Err.Error()
		term.Error = &msg
	}
	return term
}

// ParseRunStatuses converts the status query values. ok is false when a
// value is not a run status.
func ParseRunStatuses(values []string) (statuses []models.RunStatus, ok bool) {
	for _, v := range values {
		switch RunStatus(v) {
		case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
			statuses = append(statuses, models.RunStatus(v))
		default:
			return nil, false
		}
	}
	return statuses, true
}
