package adjoint_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/problems"
	"github.com/san-kum/parode/internal/term"
)

type methodFactory func(*term.Term) *integrators.RK

var _ = Describe("AutoDiffAdjoint", func() {
	var (
		f       *term.Term
		problem *adjoint.Problem
	)

	BeforeEach(func() {
		var err error
		_, f, problem, err = problems.Get("sine", [][]float64{{0.1, 0.15, 1.0}, {1.0, 1.9, 2.0}})
		Expect(err).NotTo(HaveOccurred())
	})

	initialStep := func(m integrators.Method) []float64 {
		if m.Adaptive() {
			return nil
		}
		return []float64{0.01, 0.01}
	}

	expectClose := func(got, want [][][]float64) {
		Expect(got).To(HaveLen(len(want)))
		for i := range want {
			Expect(got[i]).To(HaveLen(len(want[i])))
			for k := range want[i] {
				for j, w := range want[i][k] {
					Expect(got[i][k][j]).To(BeNumerically("~", w, 1e-3+1e-3*math.Abs(w)))
				}
			}
		}
	}

	expectEndpoints := func(sol *adjoint.Solution) {
		Expect(sol.Ts[0][len(sol.Ts[0])-1]).To(Equal(1.0))
		Expect(sol.Ts[1][len(sol.Ts[1])-1]).To(Equal(2.0))
	}

	DescribeTable("gives the same solution for a term supplied per call and a bound term",
		func(build methodFactory) {
			free := build(nil)
			dynamic, err := adjoint.New(free, control.NewIntegral(1e-3, 1e-3)).
				Solve(problem, f, initialStep(free))
			Expect(err).NotTo(HaveOccurred())

			bound := build(f)
			static, err := adjoint.New(bound, control.NewIntegral(1e-3, 1e-3, control.WithTerm(f))).
				Solve(problem, nil, initialStep(bound))
			Expect(err).NotTo(HaveOccurred())

			expectEndpoints(dynamic)
			expectEndpoints(static)
			Expect(dynamic.Ts).To(Equal(static.Ts))
			expectClose(dynamic.Ys, static.Ys)
		},
		Entry("euler", methodFactory(integrators.NewEuler)),
		Entry("heun", methodFactory(integrators.NewHeun)),
		Entry("dopri5", methodFactory(integrators.NewDopri5)),
		Entry("tsit5", methodFactory(integrators.NewTsit5)),
	)

	DescribeTable("gives the same solution eagerly and compiled",
		func(build methodFactory) {
			m := build(f)
			solver := adjoint.New(m, control.NewIntegral(1e-3, 1e-3))

			eager, err := solver.Forward(problem, nil, initialStep(m))
			Expect(err).NotTo(HaveOccurred())

			program, err := solver.Compile(problem.BatchSize(), problem.Features())
			Expect(err).NotTo(HaveOccurred())
			compiled, err := program.Solve(problem, nil, initialStep(m))
			Expect(err).NotTo(HaveOccurred())

			expectEndpoints(eager)
			expectEndpoints(compiled)
			Expect(compiled.Ts).To(Equal(eager.Ts))
			expectClose(compiled.Ys, eager.Ys)
		},
		Entry("euler", methodFactory(integrators.NewEuler)),
		Entry("heun", methodFactory(integrators.NewHeun)),
		Entry("dopri5", methodFactory(integrators.NewDopri5)),
		Entry("tsit5", methodFactory(integrators.NewTsit5)),
	)

	Context("with a compiled program", func() {
		It("can be reused for problems of the same shape", func() {
			solver := adjoint.New(integrators.NewDopri5(f), control.NewIntegral(1e-3, 1e-3))
			program, err := solver.Compile(2, 2)
			Expect(err).NotTo(HaveOccurred())

			first, err := program.Solve(problem, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := program.Solve(problem, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Ys).To(Equal(first.Ys))
		})
	})

	Context("with Euler", func() {
		It("requires an initial step", func() {
			_, err := adjoint.New(integrators.NewEuler(f), control.NewIntegral(1e-3, 1e-3)).Solve(problem, nil, nil)
			Expect(err).To(MatchError(ContainSubstring("initial step")))
		})
	})
})
