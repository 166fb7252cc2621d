package integrators

// Tableau is an explicit Runge-Kutta Butcher tableau with an optional embedded
// error estimator. A[i] holds the i coefficients of stage i; E holds the
// weights of the error estimate (b - bhat) and is nil for methods without one.
type Tableau struct {
	Name  string
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	E     []float64
	// FSAL marks tableaus whose last stage is evaluated at the propagated
	// solution, so it doubles as the first stage of the next step.
	FSAL bool
}

func (t *Tableau) Stages() int { return len(t.C) }

var eulerTableau = &Tableau{
	Name:  "euler",
	Order: 1,
	C:     []float64{0},
	A:     [][]float64{{}},
	B:     []float64{1},
}

// Heun-Euler 2(1) pair.
var heunTableau = &Tableau{
	Name:  "heun",
	Order: 2,
	C:     []float64{0, 1},
	A:     [][]float64{{}, {1}},
	B:     []float64{0.5, 0.5},
	E:     []float64{-0.5, 0.5},
}

// Dormand-Prince 5(4) coefficients
var (
	dpC1 = 35.0 / 384.0
	dpC3 = 500.0 / 1113.0
	dpC4 = 125.0 / 192.0
	dpC5 = -2187.0 / 6784.0
	dpC6 = 11.0 / 84.0
)

var dopri5Tableau = &Tableau{
	Name:  "dopri5",
	Order: 5,
	C:     []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
	A: [][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{dpC1, 0, dpC3, dpC4, dpC5, dpC6},
	},
	B: []float64{dpC1, 0, dpC3, dpC4, dpC5, dpC6, 0},
	E: []float64{
		dpC1 - 5179.0/57600.0,
		0,
		dpC3 - 7571.0/16695.0,
		dpC4 - 393.0/640.0,
		dpC5 - -92097.0/339200.0,
		dpC6 - 187.0/2100.0,
		-1.0 / 40.0,
	},
	FSAL: true,
}

// Tsitouras 5(4), Computers & Mathematics with Applications 62 (2011) 770-775.
var tsit5B = []float64{
	0.09646076681806523,
	0.01,
	0.4798896504144996,
	1.379008574103742,
	-3.290069515436081,
	2.324710524099774,
	0,
}

var tsit5Tableau = &Tableau{
	Name:  "tsit5",
	Order: 5,
	C:     []float64{0, 0.161, 0.327, 0.9, 0.9800255409045097, 1, 1},
	A: [][]float64{
		{},
		{0.161},
		{-0.008480655492356924, 0.335480655492357},
		{2.8971530571054935, -6.359448489975075, 4.362295432869581},
		{5.325864828439257, -11.748883564062828, 7.4955393428898365, -0.09249506636175525},
		{5.86145544294642, -12.92096931784711, 8.159367898576159, -0.071584973281401, -0.028269050394068383},
		tsit5B[:6],
	},
	B: tsit5B,
	E: []float64{
		-0.00178001105222577714,
		-0.0008164344596567469,
		0.007880878010261995,
		-0.1447110071732629,
		0.5823571654525552,
		-0.45808210592918697,
		1.0 / 66.0,
	},
	FSAL: true,
}
