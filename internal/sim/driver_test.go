package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/integrators"
)

var _ = Describe("Solver", func() {
	var (
		cfg    dynamo.IntegratorConfig
		linear dynamo.Problem
	)

	BeforeEach(func() {
		cfg = dynamo.DefaultIntegratorConfig()
		linear = dynamo.ProblemFunc{N: 1, Fn: func(t float64, y, dy []float64) { dy[0] = 2 * t }}
	})

	solve := func(span dynamo.Span, dt float64) *dynamo.Trajectory {
		s, err := integrators.NewRKF45(cfg)
		Expect(err).NotTo(HaveOccurred())
		tr, err := New(s).Solve(linear, span, dt, []float64{span.Start() * span.Start()})
		Expect(err).NotTo(HaveOccurred())
		return tr
	}

	It("lands exactly on the end of the span", func() {
		tr := solve(dynamo.Span{0, 10}, 1e-3)
		Expect(tr.Truncated).To(BeFalse())
		last, y := tr.Last()
		Expect(last).To(Equal(10.0))
		Expect(y[0]).To(BeNumerically("~", 100, 1e-8))
	})

	It("never takes a step larger than the max step", func() {
		tr := solve(dynamo.Span{0, 1}, 1)
		for i := 1; i < tr.Len(); i++ {
			Expect(tr.Times[i] - tr.Times[i-1]).To(BeNumerically("<=", cfg.MaxStep*(1+1e-12)))
		}
	})

	It("keeps every sample finite", func() {
		tr := solve(dynamo.Span{-3, 3}, 1e-3)
		for _, s := range tr.States {
			Expect(s.IsValid()).To(BeTrue())
		}
	})

	Context("when the iteration budget is zero", func() {
		BeforeEach(func() { cfg.MaxIterations = 0 })

		It("returns only the initial sample without error", func() {
			tr := solve(dynamo.Span{1, 11}, 1e-3)
			Expect(tr.Len()).To(Equal(1))
			Expect(tr.Truncated).To(BeTrue())
			Expect(tr.States[0]).To(Equal(dynamo.State{1}))
		})
	})

	Context("with a span shorter than the min step", func() {
		It("still reaches the end", func() {
			tr := solve(dynamo.Span{0, 1e-8}, 1e-3)
			Expect(tr.Len()).To(Equal(2))
			last, _ := tr.Last()
			Expect(last).To(Equal(1e-8))
			Expect(math.IsNaN(tr.States[1][0])).To(BeFalse())
		})
	})
})
