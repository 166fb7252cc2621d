package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

func (s State) Sub(other State) State {
	result := s.Clone()
	floats.Sub(result, other)
	return result
}

// RMS returns sqrt(mean(s_i^2)), or 0 for an empty state.
func (s State) RMS() float64 {
	if len(s) == 0 {
		return 0
	}
	return s.Norm() / math.Sqrt(float64(len(s)))
}

// Batch is a row-major matrix holding one state per row.
type Batch struct {
	Rows int
	Cols int
	Data []float64
}

func NewBatch(rows, cols int) *Batch {
	return &Batch{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// BatchFromRows copies rows into a new Batch. All rows must have the same length.
func BatchFromRows(rows [][]float64) (*Batch, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrDimensionMismatch)
	}
	cols := len(rows[0])
	b := NewBatch(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(r), cols)
		}
		copy(b.Row(i), r)
	}
	return b, nil
}

func (b *Batch) Row(i int) State {
	return b.Data[i*b.Cols : (i+1)*b.Cols]
}

func (b *Batch) Clone() *Batch {
	c := &Batch{Rows: b.Rows, Cols: b.Cols, Data: make([]float64, len(b.Data))}
	copy(c.Data, b.Data)
	return c
}

func (b *Batch) CopyFrom(src *Batch) {
	copy(b.Data, src.Data)
}

func (b *Batch) IsValid() bool {
	return State(b.Data).IsValid()
}

// Select copies the rows of src whose mask entry is true into b.
func (b *Batch) Select(mask []bool, src *Batch) {
	for i, m := range mask {
		if m {
			copy(b.Row(i), src.Row(i))
		}
	}
}

// AxpyRows sets dst row i to y_i + alpha*dt[i]*x_i for every row.
func AxpyRows(dst, y *Batch, alpha float64, dt []float64, x *Batch) {
	for i := 0; i < dst.Rows; i++ {
		floats.AddScaledTo(dst.Row(i), y.Row(i), alpha*dt[i], x.Row(i))
	}
}

// AddScaledRows adds alpha*dt[i]*x_i to dst row i.
func AddScaledRows(dst *Batch, alpha float64, dt []float64, x *Batch) {
	for i := 0; i < dst.Rows; i++ {
		floats.AddScaled(dst.Row(i), alpha*dt[i], x.Row(i))
	}
}
