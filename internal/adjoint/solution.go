package adjoint

import "github.com/san-kum/parode/internal/dynamo"

// Stats counts the work done for one batch element.
type Stats struct {
	Steps    int `json:"steps"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	FEvals   int `json:"f_evals"`
}

// Samples holds the solution interpolated at the evaluation grid.
type Samples struct {
	Ts [][]float64
	Ys [][][]float64
}

// Solution holds, per batch element, every accepted time and state starting
// with the initial point. Ts[i] is strictly increasing and ends at the
// element's end time.
type Solution struct {
	Ts     [][]float64
	Ys     [][][]float64
	Stats  []Stats
	Status []dynamo.Status
	Eval   *Samples

	dys [][][]float64
}

func newSolution(rows int) *Solution {
	s := &Solution{
		Ts:     make([][]float64, rows),
		Ys:     make([][][]float64, rows),
		Stats:  make([]Stats, rows),
		Status: make([]dynamo.Status, rows),
		dys:    make([][][]float64, rows),
	}
	for i := range s.Status {
		s.Status[i] = dynamo.Running
	}
	return s
}

func (s *Solution) append(i int, t float64, y, dy dynamo.State) {
	s.Ts[i] = append(s.Ts[i], t)
	s.Ys[i] = append(s.Ys[i], y.Clone())
	s.dys[i] = append(s.dys[i], dy.Clone())
}

func (s *Solution) BatchSize() int { return len(s.Ts) }

// Final returns the last accepted state of element i.
func (s *Solution) Final(i int) dynamo.State {
	ys := s.Ys[i]
	return ys[len(ys)-1]
}

// Total sums the stats of all elements.
func (s *Solution) Total() Stats {
	var total Stats
	for _, st := range s.Stats {
		total.Steps += st.Steps
		total.Accepted += st.Accepted
		total.Rejected += st.Rejected
		total.FEvals += st.FEvals
	}
	return total
}
