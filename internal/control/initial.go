package control

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

// InitialStep estimates a first step size for every batch element from
// f0 = f(t0, y0) and one explicit Euler probe (Hairer, Norsett, Wanner,
// Solving ODEs I, II.4). The estimate is clamped to the dt bounds and to the
// remaining span tEnd - t0. It costs one term evaluation.
func (c *Controller) InitialStep(f *term.Term, t0, tEnd []float64, y0, f0 *dynamo.Batch, order int) []float64 {
	rows := y0.Rows
	h0 := make([]float64, rows)
	d1 := make([]float64, rows)

	for i := 0; i < rows; i++ {
		y, dy := y0.Row(i), f0.Row(i)
		var dny, dnf float64
		for j := range y {
			sc := c.atol + c.rtol*math.Abs(y[j])
			dny += (y[j] / sc) * (y[j] / sc)
			dnf += (dy[j] / sc) * (dy[j] / sc)
		}
		n := float64(len(y))
		d0 := math.Sqrt(dny / n)
		d1[i] = math.Sqrt(dnf / n)

		if d0 < 1e-5 || d1[i] < 1e-5 {
			h0[i] = 1e-6
		} else {
			h0[i] = 0.01 * d0 / d1[i]
		}
		h0[i] = math.Min(h0[i], tEnd[i]-t0[i])
	}

	probe := dynamo.NewBatch(rows, y0.Cols)
	dynamo.AxpyRows(probe, y0, 1, h0, f0)
	tProbe := make([]float64, rows)
	for i := range tProbe {
		tProbe[i] = t0[i] + h0[i]
	}
	f1 := f.EvalNew(tProbe, probe)

	dt := make([]float64, rows)
	for i := 0; i < rows; i++ {
		y, a, b := y0.Row(i), f0.Row(i), f1.Row(i)
		var sum float64
		for j := range y {
			sc := c.atol + c.rtol*math.Abs(y[j])
			d := (b[j] - a[j]) / sc
			sum += d * d
		}
		d2 := math.Sqrt(sum/float64(len(y))) / h0[i]

		var h1 float64
		if dmax := math.Max(d1[i], d2); dmax <= 1e-15 {
			h1 = math.Max(1e-6, h0[i]*1e-3)
		} else {
			h1 = math.Pow(0.01/dmax, 1/float64(order+1))
		}
		dt[i] = math.Min(c.Clamp(math.Min(100*h0[i], h1)), tEnd[i]-t0[i])
	}
	return dt
}
