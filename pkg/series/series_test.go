package series_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/expsum/pkg/series"
)

var _ = Describe("Term", func() {
	DescribeTable("computes base^n / n!",
		func(base, n int, expected float64) {
			Expect(series.Term(base, n)).To(BeNumerically("~", expected, 1e-12))
		},
		Entry("0^0 is 1", 0, 0, 1.0),
		Entry("0^1 is 0", 0, 1, 0.0),
		Entry("2^0/0!", 2, 0, 1.0),
		Entry("2^3/3!", 2, 3, 8.0/6.0),
		Entry("2^4/4!", 2, 4, 16.0/24.0),
		Entry("negative base", -3, 3, -27.0/6.0),
	)

	It("should not overflow where the integer form would", func() {
		// 30^30 does not fit in 64 bits, the quotient does.
		v := series.Term(30, 30)
		Expect(math.IsInf(v, 0)).To(BeFalse())
		Expect(v).To(BeNumerically("~", math.Pow(30, 30)/math.Gamma(31), 1e-3*v))
	})

	It("should return 0 for a negative index", func() {
		Expect(series.Term(2, -1)).To(Equal(0.0))
	})
})

var _ = Describe("Sum", func() {
	It("should return the identity for zero terms", func() {
		Expect(series.Sum(5, 0)).To(Equal(series.Identity))
	})

	It("should sum the first five terms of e^2", func() {
		Expect(series.Sum(2, 5)).To(BeNumerically("~", 1+2+2+4.0/3.0+2.0/3.0, 1e-12))
	})

	It("should approach e^x with enough terms", func() {
		Expect(series.Sum(1, 30)).To(BeNumerically("~", math.E, 1e-12))
	})
})
