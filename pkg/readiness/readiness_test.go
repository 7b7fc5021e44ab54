//go:build linux

package readiness_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sys/unix"

	"github.com/tupyy/expsum/internal/models"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
	"github.com/tupyy/expsum/pkg/readiness"
)

type pipe struct {
	r, w int
}

func newPipe() pipe {
	var p [2]int
	Expect(unix.Pipe2(p[:], unix.O_CLOEXEC)).To(Succeed())
	DeferCleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})
	return pipe{r: p[0], w: p[1]}
}

func (p pipe) write(s string) {
	_, err := unix.Write(p.w, []byte(s))
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("New", func() {
	It("should build both supported strategies", func() {
		m, err := readiness.New(models.MechanismEpoll)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeAssignableToTypeOf(&readiness.Epoll{}))
		Expect(m.Close()).To(Succeed())

		m, err = readiness.New(models.MechanismSelect, readiness.WithSelectTimeout(50*time.Millisecond))
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeAssignableToTypeOf(&readiness.Select{}))
		Expect(m.Close()).To(Succeed())
	})

	It("should reject named but unimplemented strategies", func() {
		_, err := readiness.New(models.MechanismPoll)
		Expect(srvErrors.IsUnsupportedMechanismError(err)).To(BeTrue())
		Expect(err.Error()).To(Equal("poll mechanism is not supported yet."))

		_, err = readiness.New(models.MechanismSequential)
		Expect(srvErrors.IsUnsupportedMechanismError(err)).To(BeTrue())
	})

	It("should reject unknown strategies", func() {
		_, err := readiness.New(models.Mechanism("kqueue"))
		Expect(srvErrors.IsConfigurationError(err)).To(BeTrue())
	})
})

var _ = Describe("Epoll", func() {
	var m *readiness.Epoll

	BeforeEach(func() {
		var err error
		m, err = readiness.NewEpoll()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(m.Close)
	})

	It("should return ErrNoChannels when nothing is registered", func() {
		_, err := m.Wait()
		Expect(err).To(MatchError(readiness.ErrNoChannels))
	})

	It("should report a channel with data", func() {
		p := newPipe()
		Expect(m.Register(p.r)).To(Succeed())
		p.write("1.5")

		ready, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(Equal([]int{p.r}))
	})

	It("should report a channel whose writer closed", func() {
		p := newPipe()
		Expect(m.Register(p.r)).To(Succeed())
		Expect(unix.Close(p.w)).To(Succeed())

		ready, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(ConsistOf(p.r))
	})

	// Given two channels ready at the same time
	// When we wait twice without draining either
	// Then every wait returns a single channel and both stay ready
	It("should hand out one ready channel per wait", func() {
		a, b := newPipe(), newPipe()
		Expect(m.Register(a.r)).To(Succeed())
		Expect(m.Register(b.r)).To(Succeed())
		a.write("1")
		b.write("2")

		first, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(HaveLen(1))

		Expect(m.Deregister(first[0])).To(Succeed())
		second, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(HaveLen(1))
		Expect(second[0]).NotTo(Equal(first[0]))
	})

	It("should ignore deregistration of an unknown channel", func() {
		Expect(m.Deregister(12345)).To(Succeed())
		Expect(m.Len()).To(BeZero())
	})

	It("should not count a channel twice", func() {
		p := newPipe()
		Expect(m.Register(p.r)).To(Succeed())
		Expect(m.Register(p.r)).To(Succeed())
		Expect(m.Len()).To(Equal(1))
		Expect(m.Deregister(p.r)).To(Succeed())
		Expect(m.Len()).To(BeZero())
	})
})

var _ = Describe("Select", func() {
	var m *readiness.Select

	BeforeEach(func() {
		m = readiness.NewSelect(100 * time.Millisecond)
		DeferCleanup(m.Close)
	})

	It("should return an empty set when the ceiling expires", func() {
		p := newPipe()
		Expect(m.Register(p.r)).To(Succeed())

		start := time.Now()
		ready, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(BeEmpty())
		Expect(time.Since(start)).To(BeNumerically(">=", 50*time.Millisecond))
	})

	// Given three channels of which two are ready
	// When we wait once
	// Then both ready channels are returned in registration order
	It("should return every ready channel in a single wait", func() {
		a, b, c := newPipe(), newPipe(), newPipe()
		Expect(m.Register(a.r)).To(Succeed())
		Expect(m.Register(b.r)).To(Succeed())
		Expect(m.Register(c.r)).To(Succeed())
		a.write("1")
		Expect(unix.Close(c.w)).To(Succeed())

		ready, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(Equal([]int{a.r, c.r}))
	})

	It("should stop watching a deregistered channel", func() {
		a, b := newPipe(), newPipe()
		Expect(m.Register(a.r)).To(Succeed())
		Expect(m.Register(b.r)).To(Succeed())
		a.write("1")
		b.write("2")

		Expect(m.Deregister(a.r)).To(Succeed())
		ready, err := m.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(ready).To(Equal([]int{b.r}))
	})

	It("should refuse fds that do not fit in an fd_set", func() {
		Expect(m.Register(1 << 20)).To(MatchError(readiness.ErrFdOutOfRange))
		Expect(m.Register(-1)).To(MatchError(readiness.ErrFdOutOfRange))
	})

	It("should ignore deregistration of an unknown channel", func() {
		Expect(m.Deregister(777)).To(Succeed())
	})

	It("should return ErrNoChannels when nothing is registered", func() {
		_, err := m.Wait()
		Expect(err).To(MatchError(readiness.ErrNoChannels))
	})
})
