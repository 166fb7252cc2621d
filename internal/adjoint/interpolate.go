package adjoint

import (
	"github.com/san-kum/parode/internal/dynamo"
	"gonum.org/v1/gonum/interp"
)

// sample evaluates the cubic Hermite interpolant through the accepted points
// of every element at the problem's evaluation grid.
func (s *Solution) sample(tEval [][]float64) *Samples {
	out := &Samples{
		Ts: make([][]float64, len(tEval)),
		Ys: make([][][]float64, len(tEval)),
	}
	for i, grid := range tEval {
		out.Ts[i] = append([]float64(nil), grid...)
		out.Ys[i] = make([][]float64, len(grid))
		cubics := s.fit(i)
		for k, t := range grid {
			out.Ys[i][k] = s.predict(i, cubics, t)
		}
	}
	return out
}

// At interpolates element i at time t. Times outside the element's span are
// held at the nearest end point.
func (s *Solution) At(i int, t float64) dynamo.State {
	return s.predict(i, s.fit(i), t)
}

// fit returns one piecewise cubic per feature of element i, matching the
// accepted states and their derivatives at every accepted time. It returns
// nil when element i has a single point.
func (s *Solution) fit(i int) []interp.PiecewiseCubic {
	ts := s.Ts[i]
	if len(ts) < 2 {
		return nil
	}
	cols := len(s.Ys[i][0])
	cubics := make([]interp.PiecewiseCubic, cols)
	ys := make([]float64, len(ts))
	dys := make([]float64, len(ts))
	for k := range cubics {
		for j := range ts {
			ys[j] = s.Ys[i][j][k]
			dys[j] = s.dys[i][j][k]
		}
		cubics[k].FitWithDerivatives(ts, ys, dys)
	}
	return cubics
}

func (s *Solution) predict(i int, cubics []interp.PiecewiseCubic, t float64) dynamo.State {
	if cubics == nil {
		return dynamo.State(s.Ys[i][0]).Clone()
	}
	out := make(dynamo.State, len(cubics))
	for k := range cubics {
		out[k] = cubics[k].Predict(t)
	}
	return out
}
