package services_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/services"
	"github.com/tupyy/expsum/internal/store"
	"github.com/tupyy/expsum/internal/store/migrations"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
	"github.com/tupyy/expsum/pkg/scheduler"
	"github.com/tupyy/expsum/pkg/series"
)

// fakeExecutor returns a fixed outcome, optionally after release is closed.
type fakeExecutor struct {
	result  models.RunResult
	err     error
	release chan struct{}
	calls   chan models.RunParams
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{calls: make(chan models.RunParams, 16)}
}

func (f *fakeExecutor) Run(ctx context.Context, params models.RunParams, _ func(models.TermResult)) (models.RunResult, error) {
	f.calls <- params
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return f.result, ctx.Err()
		}
	}
	return f.result, f.err
}

var validParams = models.RunParams{Base: 2, Terms: 3, Workers: 2, Mechanism: models.MechanismEpoll}

var _ = Describe("RunService", func() {
	var (
		ctx   context.Context
		db    *sql.DB
		st    *store.Store
		sched *scheduler.Scheduler[models.Run]
		exec  *fakeExecutor
		svc   *services.RunService
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		sched = scheduler.NewScheduler[models.Run](1)
		exec = newFakeExecutor()
		exec.result = models.RunResult{
			Total:     5,
			Completed: 3,
			Target:    3,
			Terms: []models.TermResult{
				{Term: 0, Slot: 0, Value: 1},
				{Term: 1, Slot: 1, Value: 2},
				{Term: 2, Slot: 0, Value: 2},
			},
			Stats: models.RunStats{Iterations: 3, Spawned: 3, MaxLive: 2},
		}
		svc = services.NewRunService(st, sched, exec)
	})

	AfterEach(func() {
		sched.Close()
		db.Close()
	})

	Context("Submit", func() {
		// Given parameters with an empty pool
		// When the run is submitted
		// Then it is refused and nothing is recorded
		It("should refuse invalid parameters before recording", func() {
			params := validParams
			params.Workers = 0

			_, err := svc.Submit(ctx, params)

			Expect(srvErrors.IsConfigurationError(err)).To(BeTrue())
			list, err := svc.List(ctx, services.RunListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Total).To(BeZero())
			Expect(exec.calls).To(BeEmpty())
		})

		It("should refuse an unsupported mechanism", func() {
			params := validParams
			params.Mechanism = models.MechanismSequential

			_, err := svc.Submit(ctx, params)
			Expect(srvErrors.IsUnsupportedMechanismError(err)).To(BeTrue())
		})

		// Given a valid run
		// When it is submitted and executed
		// Then it goes pending, running, completed and its terms are stored
		It("should move a run through pending, running and completed", func() {
			exec.release = make(chan struct{})

			run, err := svc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.ID).NotTo(BeEmpty())
			Expect(run.Status).To(Equal(models.RunStatusPending))

			Eventually(exec.calls).Should(Receive(Equal(validParams)))
			Eventually(func() models.RunStatus {
				r, err := svc.Get(ctx, run.ID)
				Expect(err).NotTo(HaveOccurred())
				return r.Status
			}).Should(Equal(models.RunStatusRunning))

			close(exec.release)
			done, err := svc.Wait(ctx, run.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(done.Status).To(Equal(models.RunStatusCompleted))
			Expect(done.Result.Total).To(Equal(5.0))
			Expect(done.Result.Stats.MaxLive).To(Equal(2))
			Expect(done.FinishedAt).NotTo(BeNil())

			terms, err := svc.Terms(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(terms).To(HaveLen(3))
		})

		It("should mark a run with failed terms as failed and keep its partial total", func() {
			exec.result.Completed = 2
			exec.result.Failed = 1
			exec.result.Total = 3
			exec.err = srvErrors.NewIncompleteRunError(1, 3, errors.New("worker 0 term 2 exited with error: exit status 3"))

			run, err := svc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())

			done, err := svc.Wait(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(done.Status).To(Equal(models.RunStatusFailed))
			Expect(done.Error).To(ContainSubstring("1 of 3 terms failed"))
			Expect(done.Result.Total).To(Equal(3.0))
		})

		It("should fail runs still queued when the scheduler closes", func() {
			exec.release = make(chan struct{})

			first, err := svc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())
			Eventually(exec.calls).Should(Receive())
			second, err := svc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())

			sched.Close()

			for _, id := range []string{first.ID, second.ID} {
				done, err := svc.Wait(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(done.Status).To(Equal(models.RunStatusFailed))
			}
		})
	})

	Context("Close", func() {
		// Given a running and a queued run on a file database
		// When the scheduler and the service are closed and the database after them
		// Then both runs are recorded as failed before the database closes
		It("should record refused runs before returning", func() {
			path := filepath.Join(GinkgoT().TempDir(), "expsum.duckdb")
			fileDB, err := store.NewDB(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(migrations.Run(ctx, fileDB)).To(Succeed())
			fileSched := scheduler.NewScheduler[models.Run](1)
			exec.release = make(chan struct{})
			fileSvc := services.NewRunService(store.NewStore(fileDB), fileSched, exec)

			first, err := fileSvc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())
			Eventually(exec.calls).Should(Receive())
			second, err := fileSvc.Submit(ctx, validParams)
			Expect(err).NotTo(HaveOccurred())

			fileSched.Close()
			fileSvc.Close()
			Expect(fileDB.Close()).To(Succeed())

			reopened, err := store.NewDB(path)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()
			runs := store.NewStore(reopened).Runs()
			for _, id := range []string{first.ID, second.ID} {
				r, err := runs.Get(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Status).To(Equal(models.RunStatusFailed))
				Expect(r.FinishedAt).NotTo(BeNil())
			}
		})

		It("should refuse runs once closed", func() {
			svc.Close()

			_, err := svc.Submit(ctx, validParams)

			Expect(errors.Is(err, scheduler.ErrClosed)).To(BeTrue())
			list, err := svc.List(ctx, services.RunListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Total).To(BeZero())
		})
	})

	Context("List", func() {
		It("should filter by status and report the unpaginated total", func() {
			for range 3 {
				run, err := svc.Submit(ctx, validParams)
				Expect(err).NotTo(HaveOccurred())
				_, err = svc.Wait(ctx, run.ID)
				Expect(err).NotTo(HaveOccurred())
			}

			list, err := svc.List(ctx, services.RunListParams{
				Statuses: []models.RunStatus{models.RunStatusCompleted},
				Limit:    2,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(list.Runs).To(HaveLen(2))
			Expect(list.Total).To(Equal(3))
		})

		It("should filter by mechanism", func() {
			selectParams := validParams
			selectParams.Mechanism = models.MechanismSelect
			for _, p := range []models.RunParams{validParams, selectParams, selectParams} {
				_, err := svc.Record(ctx, p, time.Now(), exec.result, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			list, err := svc.List(ctx, services.RunListParams{Mechanisms: []models.Mechanism{models.MechanismSelect}})

			Expect(err).NotTo(HaveOccurred())
			Expect(list.Total).To(Equal(2))
			for _, r := range list.Runs {
				Expect(r.Params.Mechanism).To(Equal(models.MechanismSelect))
			}
		})
	})

	Context("Terms", func() {
		It("should return RunNotFoundError for an unknown run", func() {
			_, err := svc.Terms(ctx, "missing")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("Record", func() {
		It("should store a run executed outside the scheduler", func() {
			started := time.Now()
			run, err := svc.Record(ctx, validParams, started, exec.result, nil)
			Expect(err).NotTo(HaveOccurred())

			got, err := svc.Get(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(models.RunStatusCompleted))
			Expect(got.Result.Completed).To(Equal(3))
			Expect(exec.calls).To(BeEmpty())
		})
	})

	Context("with worker processes", func() {
		It("should execute a submitted run end to end", func() {
			svc = services.NewRunService(st, sched, newRunner())

			run, err := svc.Submit(ctx, models.RunParams{Base: 3, Terms: 12, Workers: 4, Mechanism: models.MechanismSelect})
			Expect(err).NotTo(HaveOccurred())

			done, err := svc.Wait(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(done.Status).To(Equal(models.RunStatusCompleted))
			Expect(done.Result.Total).To(BeNumerically("~", series.Sum(3, 12), 1e-9*series.Sum(3, 12)))
			Expect(done.Result.Stats.MaxLive).To(BeNumerically("<=", 4))

			terms, err := svc.Terms(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(terms).To(HaveLen(12))
			for i, t := range terms {
				Expect(t.Term).To(Equal(i))
			}
		})
	})
})
