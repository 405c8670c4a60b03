package ode

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
)

var _ = Describe("Pipeline", func() {
	var (
		solver   *Solver
		settings Settings
	)

	BeforeEach(func() {
		solver = NewSolver()
		settings = DefaultSettings()
	})

	Describe("the default Cartesian problem", func() {
		BeforeEach(func() {
			settings.Inputs = NewInputs("x^2 - 7*y - 10")
		})

		It("starts at the initial point and spans the integration length", func() {
			sol, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())

			tr := sol.Trajectory
			Expect(tr.Times[0]).To(Equal(1.0))
			Expect(tr.States[0]).To(Equal(dynamo.State{1}))
			Expect(sol.Span).To(Equal(dynamo.Span{1, 11}))

			last, _ := tr.Last()
			if tr.Truncated {
				Expect(last).To(BeNumerically("<", 11))
			} else {
				Expect(last).To(Equal(11.0))
			}
			for i := 1; i < tr.Len(); i++ {
				Expect(tr.Times[i]).To(BeNumerically(">", tr.Times[i-1]))
			}
			Expect(sol.Display).To(HaveLen(tr.Len()))
		})

		It("accepts the implicit product form", func() {
			a, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())
			settings.Inputs = NewInputs("x^2 - 7y - 10")
			b, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Trajectory.States).To(Equal(a.Trajectory.States))
		})
	})

	Context("with a zero-length span", func() {
		It("returns exactly the initial condition", func() {
			settings.IntegrationLength = 0
			settings.InitialConditions = []float64{2, -3}
			sol, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Trajectory.Len()).To(Equal(1))
			Expect(sol.Trajectory.States[0]).To(Equal(dynamo.State{-3}))
			Expect(sol.Display).To(Equal([]coords.Point{{X: 2, Y: -3}}))
		})
	})

	Context("with no iteration budget", func() {
		It("returns only the initial point and no error", func() {
			settings.Integrator.MaxIterations = 0
			sol, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Trajectory.Len()).To(Equal(1))
			Expect(sol.Trajectory.Truncated).To(BeTrue())
		})
	})

	Context("with an unknown symbol", func() {
		It("fails to compile instead of zero-filling", func() {
			settings.Inputs = NewInputs("z + 1")
			sol, err := solver.Solve(settings)
			Expect(sol).To(BeNil())
			Expect(err).To(MatchError(expr.ErrBuild))
		})
	})

	Context("when a system is requested", func() {
		It("refuses before integrating", func() {
			settings.Dimensions = 2
			settings.Inputs = NewInputs("y", "x")
			sol, err := solver.Solve(settings)
			Expect(sol).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrUnimplementedSystem))
		})
	})

	Context("when the derivative blows up", func() {
		It("truncates with finite samples only", func() {
			settings.Inputs = NewInputs("1 / (x - 2)")
			settings.InitialConditions = []float64{0, 0}
			settings.IntegrationLength = 4
			settings.Integrator.MaxIterations = 50
			sol, err := solver.Solve(settings)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range sol.Trajectory.States {
				Expect(s.IsValid()).To(BeTrue())
			}
			for _, p := range sol.Display {
				Expect(math.IsNaN(p.Y)).To(BeFalse())
			}
		})
	})
})
