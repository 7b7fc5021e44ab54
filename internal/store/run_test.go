package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/store"
	"github.com/tupyy/expsum/internal/store/migrations"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

func newRun(id string, status models.RunStatus, created time.Time) models.Run {
	return models.Run{
		ID: id,
		Params: models.RunParams{
			Base:      2,
			Terms:     5,
			Workers:   2,
			Mechanism: models.MechanismEpoll,
		},
		Status:    status,
		CreatedAt: created,
	}
}

var _ = Describe("RunStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty store
		// When we get a run by id
		// Then it should return RunNotFoundError
		It("should return RunNotFoundError for an unknown id", func() {
			_, err := s.Runs().Get(ctx, "missing")

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a created run
		// When we get it back
		// Then every parameter survives the round trip
		It("should return a created run", func() {
			Expect(s.Runs().Create(ctx, newRun("r1", models.RunStatusPending, now))).To(Succeed())

			run, err := s.Runs().Get(ctx, "r1")

			Expect(err).NotTo(HaveOccurred())
			Expect(run.Params.Base).To(Equal(2))
			Expect(run.Params.Terms).To(Equal(5))
			Expect(run.Params.Workers).To(Equal(2))
			Expect(run.Params.Mechanism).To(Equal(models.MechanismEpoll))
			Expect(run.Status).To(Equal(models.RunStatusPending))
			Expect(run.CreatedAt.Equal(now)).To(BeTrue())
			Expect(run.FinishedAt).To(BeNil())
		})
	})

	Context("Create", func() {
		It("should refuse a duplicate id", func() {
			Expect(s.Runs().Create(ctx, newRun("r1", models.RunStatusPending, now))).To(Succeed())
			Expect(s.Runs().Create(ctx, newRun("r1", models.RunStatusPending, now))).NotTo(Succeed())
		})
	})

	Context("Update", func() {
		// Given a running run
		// When it is updated with its result
		// Then the result, the stats and the finish time are stored
		It("should store the result of a finished run", func() {
			run := newRun("r1", models.RunStatusRunning, now)
			Expect(s.Runs().Create(ctx, run)).To(Succeed())

			finished := now.Add(time.Second)
			run.Status = models.RunStatusCompleted
			run.FinishedAt = &finished
			run.Result = models.RunResult{
				Total:     7.0,
				Completed: 5,
				Target:    5,
				Stats:     models.RunStats{Iterations: 5, Spawned: 5, MaxLive: 2},
			}
			Expect(s.Runs().Update(ctx, run)).To(Succeed())

			got, err := s.Runs().Get(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(models.RunStatusCompleted))
			Expect(got.Result.Total).To(BeNumerically("~", 7.0, 1e-9))
			Expect(got.Result.Completed).To(Equal(5))
			Expect(got.Result.Target).To(Equal(5))
			Expect(got.Result.Stats.MaxLive).To(Equal(2))
			Expect(got.FinishedAt).NotTo(BeNil())
			Expect(got.FinishedAt.Equal(finished)).To(BeTrue())
		})

		It("should store the error of a failed run", func() {
			run := newRun("r1", models.RunStatusRunning, now)
			Expect(s.Runs().Create(ctx, run)).To(Succeed())

			run.Status = models.RunStatusFailed
			run.Error = "1 of 5 terms failed"
			Expect(s.Runs().Update(ctx, run)).To(Succeed())

			got, err := s.Runs().Get(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Error).To(Equal("1 of 5 terms failed"))
		})

		It("should return RunNotFoundError for an unknown run", func() {
			err := s.Runs().Update(ctx, newRun("missing", models.RunStatusFailed, now))
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			statuses := []models.RunStatus{
				models.RunStatusCompleted,
				models.RunStatusFailed,
				models.RunStatusCompleted,
				models.RunStatusPending,
			}
			for i, status := range statuses {
				run := newRun(fmt.Sprintf("r%d", i), status, now.Add(time.Duration(i)*time.Minute))
				if i == 3 {
					run.Params.Mechanism = models.MechanismSelect
				}
				Expect(s.Runs().Create(ctx, run)).To(Succeed())
			}
		})

		It("should list the newest runs first", func() {
			runs, err := s.Runs().List(ctx, store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(4))
			Expect(runs[0].ID).To(Equal("r3"))
			Expect(runs[3].ID).To(Equal("r0"))
		})

		It("should filter by status", func() {
			runs, err := s.Runs().List(ctx, store.ByStatus(models.RunStatusCompleted), store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			for _, r := range runs {
				Expect(r.Status).To(Equal(models.RunStatusCompleted))
			}
		})

		It("should filter by mechanism", func() {
			runs, err := s.Runs().List(ctx, store.ByMechanism(models.MechanismSelect))

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].ID).To(Equal("r3"))
		})

		It("should paginate", func() {
			runs, err := s.Runs().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(1))

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal("r2"))
			Expect(runs[1].ID).To(Equal("r1"))
		})

		It("should count runs ignoring pagination", func() {
			count, err := s.Runs().Count(ctx, store.ByStatus(models.RunStatusCompleted, models.RunStatusFailed), store.WithLimit(1))

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(3))
		})
	})
})
