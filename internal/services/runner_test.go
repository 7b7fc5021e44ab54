package services_test

import (
	"context"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/expsum/internal/config"
	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/services"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
	"github.com/tupyy/expsum/pkg/series"
)

func newRunner() *services.Runner {
	cfg := config.NewConfiguration().Run
	cfg.WorkerPath = workerPath
	r, err := services.NewRunner(cfg)
	Expect(err).NotTo(HaveOccurred())
	return r.WithStderr(GinkgoWriter)
}

var _ = Describe("Runner", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	DescribeTable("should sum the series with worker processes",
		func(mechanism models.Mechanism) {
			var seen []int
			result, err := newRunner().Run(ctx,
				models.RunParams{Base: 2, Terms: 5, Workers: 2, Mechanism: mechanism},
				func(r models.TermResult) { seen = append(seen, r.Term) })

			Expect(err).NotTo(HaveOccurred())
			Expect(fmt.Sprintf("%.4f", result.Total)).To(Equal("7.0000"))
			Expect(result.Total).To(BeNumerically("~", series.Sum(2, 5), 1e-9))
			Expect(seen).To(ConsistOf(0, 1, 2, 3, 4))
		},
		Entry("epoll", models.MechanismEpoll),
		Entry("select", models.MechanismSelect),
	)

	It("should return the identity for zero terms", func() {
		result, err := newRunner().Run(ctx, models.RunParams{Base: 9, Terms: 0, Workers: 1, Mechanism: models.MechanismEpoll}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(1.0))
		Expect(result.Stats.Spawned).To(BeZero())
	})

	It("should refuse a mechanism without implementation", func() {
		result, err := newRunner().Run(ctx, models.RunParams{Base: 1, Terms: 3, Workers: 1, Mechanism: models.MechanismPoll}, nil)

		Expect(srvErrors.IsUnsupportedMechanismError(err)).To(BeTrue())
		Expect(result.Stats.Spawned).To(BeZero())
	})

	It("should refuse an empty pool", func() {
		_, err := newRunner().Run(ctx, models.RunParams{Base: 1, Terms: 3, Workers: 0, Mechanism: models.MechanismEpoll}, nil)
		Expect(srvErrors.IsConfigurationError(err)).To(BeTrue())
	})

	It("should not build a runner around a missing worker", func() {
		cfg := config.NewConfiguration().Run
		cfg.WorkerPath = filepath.Join(GinkgoT().TempDir(), "missing")

		_, err := services.NewRunner(cfg)
		Expect(srvErrors.IsConfigurationError(err)).To(BeTrue())
	})
})
