package e2e_test

import (
	"encoding/json"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/tupyy/expsum/internal/report"
	"github.com/tupyy/expsum/test"
)

var _ = Describe("expsum run", func() {
	DescribeTable("should print the final result",
		func(mechanism string, base, terms, workers, want string) {
			session := expsum("run", "--log-level", "error", "-m", mechanism,
				"-x", base, "-n", terms, "-w", workers, "-p", workerPath)

			Expect(session.ExitCode()).To(Equal(0))
			Expect(session.Out).To(gbytes.Say("Final Result : " + want))
		},
		Entry("epoll, base 2 over 5 terms", "epoll", "2", "5", "2", `7\.0000`),
		Entry("select, base 2 over 5 terms", "select", "2", "5", "2", `7\.0000`),
		Entry("epoll, base 0 over 3 terms", "epoll", "0", "3", "3", `1\.0000`),
		Entry("select, base 1 over 12 terms", "select", "1", "12", "4", `2\.7183`),
		Entry("epoll, no terms", "epoll", "5", "0", "2", `1\.0000`),
	)

	It("should trace every term before the final result", func() {
		// Given a run over four terms
		session := expsum("run", "--log-level", "error", "-x", "3", "-n", "4", "-w", "2", "-p", workerPath)

		// Then one worker line per term precedes the total
		Expect(session.ExitCode()).To(Equal(0))
		out := string(session.Out.Contents())
		Expect(strings.Count(out, "worker ")).To(Equal(4))
		Expect(out).To(ContainSubstring("3^2 / 2! : 4.5000"))
		Expect(out).To(HaveSuffix("Final Result : 13.0000\n"))
	})

	DescribeTable("should exit 0 on a mechanism that is not implemented",
		func(mechanism string) {
			session := expsum("run", "-m", mechanism, "-x", "2", "-n", "5", "-p", workerPath)

			Expect(session.ExitCode()).To(Equal(0))
			Expect(session.Out).To(gbytes.Say(mechanism + " mechanism is not supported yet."))
			Expect(session.Out.Contents()).NotTo(ContainSubstring("Final Result"))
		},
		Entry("poll", "poll"),
		Entry("sequential", "sequential"),
	)

	DescribeTable("should exit 1 on an invalid configuration",
		func(args ...string) {
			session := expsum(append([]string{"run", "-p", workerPath}, args...)...)

			Expect(session.ExitCode()).To(Equal(1))
			Expect(session.Err).To(gbytes.Say("invalid argument"))
		},
		Entry("no workers", "-w", "0"),
		Entry("negative terms", "-n", "-1"),
		Entry("unknown mechanism", "-m", "kqueue"),
		Entry("zero read budget", "--read-budget", "0"),
	)

	It("should exit 1 when the worker executable is missing", func() {
		session := expsum("run", "-p", filepath.Join(GinkgoT().TempDir(), "missing"))

		Expect(session.ExitCode()).To(Equal(1))
		Expect(session.Err).To(gbytes.Say("worker-path"))
	})

	It("should exit 1 and report failed terms when workers crash", func() {
		// Given a worker that exits non-zero after writing
		script, err := test.WriteWorkerScript(GinkgoT().TempDir(), "crash.sh", test.ScriptCrash)
		Expect(err).NotTo(HaveOccurred())

		session := expsum("run", "--log-level", "error", "-n", "3", "-w", "2", "-p", script)

		// Then every term is reported as failed and the command fails
		Expect(session.ExitCode()).To(Equal(1))
		Expect(session.Out).To(gbytes.Say("3 of 3 terms failed"))
		Expect(session.Err).To(gbytes.Say("3 of 3 terms failed"))
	})

	It("should take the run section from the environment", func() {
		cmd := []string{"run", "--log-level", "error", "-p", workerPath, "-n", "3"}
		session := expsumEnv([]string{"EXPSUM_RUN_BASE=4"}, cmd...)

		// 1 + 4 + 8
		Expect(session.ExitCode()).To(Equal(0))
		Expect(session.Out).To(gbytes.Say(`Final Result : 13\.0000`))
	})

	It("should write a json summary", func() {
		session := expsum("run", "--log-level", "error", "-x", "2", "-n", "5", "-w", "2", "-p", workerPath, "-o", "json")
		Expect(session.ExitCode()).To(Equal(0))

		var summary report.Summary
		Expect(json.Unmarshal(session.Out.Contents(), &summary)).To(Succeed())
		Expect(summary.Total).To(BeNumerically("~", 7.0, 1e-9))
		Expect(summary.Completed).To(Equal(5))
		Expect(summary.Results).To(HaveLen(5))
		Expect(summary.MaxLive).To(BeNumerically("<=", 2))
	})
})
