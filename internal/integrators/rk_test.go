package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harmonic oscillator: y = [sin t, cos t]
var harmonic = term.New("harmonic", func(t []float64, y, dy *dynamo.Batch) {
	for i := 0; i < y.Rows; i++ {
		r, d := y.Row(i), dy.Row(i)
		d[0] = r[1]
		d[1] = -r[0]
	}
})

func harmonicStart(t0 []float64) *dynamo.Batch {
	y := dynamo.NewBatch(len(t0), 2)
	for i, t := range t0 {
		y.Row(i)[0] = math.Sin(t)
		y.Row(i)[1] = math.Cos(t)
	}
	return y
}

// integrate takes n fixed steps of size h from t0 and returns the final state error.
func integrate(m Method, t0, h float64, n int) float64 {
	ts := []float64{t0}
	dt := []float64{h}
	y := harmonicStart(ts)
	ws := NewWorkspace(m, 1, 2)
	for i := 0; i < n; i++ {
		f0 := harmonic.EvalNew(ts, y)
		res := m.Step(harmonic, ts, dt, y, f0, ws)
		y.CopyFrom(res.Y)
		ts[0] += h
	}
	want := harmonicStart(ts)
	return dynamo.State(y.Data).Sub(want.Data).Norm()
}

func TestTableauConsistency(t *testing.T) {
	for _, tab := range []*Tableau{eulerTableau, heunTableau, dopri5Tableau, tsit5Tableau} {
		t.Run(tab.Name, func(t *testing.T) {
			require.Len(t, tab.A, tab.Stages())
			require.Len(t, tab.B, tab.Stages())
			for i, row := range tab.A {
				require.Len(t, row, i)
				sum := 0.0
				for _, a := range row {
					sum += a
				}
				assert.InDelta(t, tab.C[i], sum, 1e-12, "row %d", i)
			}

			sumB := 0.0
			for _, b := range tab.B {
				sumB += b
			}
			assert.InDelta(t, 1.0, sumB, 1e-12)

			if tab.E != nil {
				require.Len(t, tab.E, tab.Stages())
				sumE := 0.0
				for _, e := range tab.E {
					sumE += e
				}
				assert.InDelta(t, 0.0, sumE, 1e-12)
			}

			if tab.FSAL {
				last := tab.A[tab.Stages()-1]
				assert.InDeltaSlice(t, tab.B[:len(last)], last, 0)
				assert.Equal(t, 1.0, tab.C[tab.Stages()-1])
			}
		})
	}
}

func TestConvergenceOrder(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			m, err := ByName(name, nil)
			require.NoError(t, err)

			coarse := integrate(m, 0, 0.1, 10)
			fine := integrate(m, 0, 0.05, 20)
			observed := math.Log2(coarse / fine)

			assert.InDelta(t, float64(m.Order()), observed, 0.35,
				"coarse=%.3e fine=%.3e", coarse, fine)
		})
	}
}

func TestErrorEstimate(t *testing.T) {
	for _, name := range []string{"heun", "dopri5", "tsit5"} {
		t.Run(name, func(t *testing.T) {
			m, err := ByName(name, harmonic)
			require.NoError(t, err)
			require.True(t, m.Adaptive())

			estimate := func(h float64) float64 {
				ts := []float64{0.3}
				y := harmonicStart(ts)
				ws := NewWorkspace(m, 1, 2)
				res := m.Step(harmonic, ts, []float64{h}, y, harmonic.EvalNew(ts, y), ws)
				require.NotNil(t, res.Err)
				return res.Err.Row(0).Norm()
			}

			big, small := estimate(0.2), estimate(0.1)
			assert.Greater(t, big, small)
			assert.Greater(t, small, 0.0)
		})
	}
}

func TestEulerHasNoErrorEstimate(t *testing.T) {
	m := NewEuler(nil)
	assert.False(t, m.Adaptive())

	ts := []float64{0}
	y := harmonicStart(ts)
	res := m.Step(harmonic, ts, []float64{0.1}, y, harmonic.EvalNew(ts, y), NewWorkspace(m, 1, 2))
	assert.Nil(t, res.Err)
	assert.Nil(t, res.F1)
	assert.InDeltaSlice(t, []float64{0.1, 1}, res.Y.Data, 1e-15)
}

func TestFSALMatchesEvaluation(t *testing.T) {
	for _, m := range []Method{NewDopri5(nil), NewTsit5(nil)} {
		t.Run(m.Name(), func(t *testing.T) {
			ts := []float64{0.1, 1.0}
			dt := []float64{0.05, 0.2}
			y := harmonicStart(ts)
			res := m.Step(harmonic, ts, dt, y, harmonic.EvalNew(ts, y), NewWorkspace(m, 2, 2))
			require.NotNil(t, res.F1)

			next := []float64{ts[0] + dt[0], ts[1] + dt[1]}
			want := harmonic.EvalNew(next, res.Y)
			assert.InDeltaSlice(t, want.Data, res.F1.Data, 1e-12)
		})
	}
}

func TestRowsAreIndependent(t *testing.T) {
	m := NewDopri5(nil)
	ts := []float64{0.1, 1.0}
	dt := []float64{0.05, 0.2}
	y := harmonicStart(ts)
	batched := m.Step(harmonic, ts, dt, y, harmonic.EvalNew(ts, y), NewWorkspace(m, 2, 2)).Y.Clone()

	for i := range ts {
		ys := harmonicStart(ts[i : i+1])
		res := m.Step(harmonic, ts[i:i+1], dt[i:i+1], ys, harmonic.EvalNew(ts[i:i+1], ys), NewWorkspace(m, 1, 2))
		assert.Equal(t, []float64(batched.Row(i)), res.Y.Data)
	}
}

func TestWorkspaceFits(t *testing.T) {
	ws := NewWorkspace(NewDopri5(nil), 2, 3)
	assert.True(t, ws.Fits(NewTsit5(nil), 2, 3))
	assert.False(t, ws.Fits(NewHeun(nil), 2, 3))
	assert.False(t, ws.Fits(NewDopri5(nil), 3, 3))
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("rk4", nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"dopri5", "euler", "heun", "tsit5"}, Names())
}
