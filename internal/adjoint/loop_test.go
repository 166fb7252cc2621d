package adjoint

import (
	"testing"

	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decay = term.New("decay", func(t []float64, y, dy *dynamo.Batch) {
	for i, v := range y.Data {
		dy.Data[i] = -v
	}
})

func TestFrameWorkspace(t *testing.T) {
	fr := newFrame(2, 3)
	assert.Nil(t, fr.ws)

	dopri := integrators.NewDopri5(nil)
	ws := fr.workspace(dopri)
	require.NotNil(t, ws)
	assert.Same(t, ws, fr.workspace(dopri))

	// a method with a different stage count gets fresh buffers
	heun := fr.workspace(integrators.NewHeun(nil))
	assert.NotSame(t, ws, heun)
	assert.True(t, heun.Fits(integrators.NewHeun(nil), 2, 3))
}

func TestProgramKeepsWorkspace(t *testing.T) {
	solver := New(integrators.NewDopri5(decay), control.NewIntegral(1e-6, 1e-6))
	program, err := solver.Compile(2, 1)
	require.NoError(t, err)
	ws := program.frame.ws
	require.NotNil(t, ws)

	y0, err := dynamo.BatchFromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	p, err := NewProblem(y0, []float64{0, 0}, []float64{1, 2})
	require.NoError(t, err)

	for run := 0; run < 2; run++ {
		_, err := program.Solve(p, nil, nil)
		require.NoError(t, err)
		assert.Same(t, ws, program.frame.ws)
	}
}
