package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CorrelationMatrix is a square symmetric matrix of coefficients between named
// series. Storage is a gonum SymDense, so m[i][j] == m[j][i] by construction.
// Undefined coefficients are stored as NaN internally and surfaced as
// Coefficient{Defined: false}.
type CorrelationMatrix struct {
	names []string
	index map[string]int
	sym   *mat.SymDense
}

// NewCorrelationMatrix creates a matrix with a unit diagonal and every
// off-diagonal cell undefined.
func NewCorrelationMatrix(names []string) *CorrelationMatrix {
	n := len(names)
	m := &CorrelationMatrix{
		names: append([]string(nil), names...),
		index: make(map[string]int, n),
	}
	for i, name := range names {
		m.index[name] = i
	}
	if n == 0 {
		return m
	}

	m.sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if i == j {
				m.sym.SetSym(i, j, 1)
			} else {
				m.sym.SetSym(i, j, math.NaN())
			}
		}
	}
	return m
}

// Set stores c for the unordered pair (i, j). The diagonal is fixed at 1.
func (m *CorrelationMatrix) Set(i, j int, c Coefficient) {
	if i == j {
		panic(fmt.Sprintf("stats: cannot overwrite diagonal cell %d", i))
	}
	v := math.NaN()
	if c.Defined {
		v = c.Value
	}
	m.sym.SetSym(i, j, v)
}

// At returns the coefficient at row i, column j
func (m *CorrelationMatrix) At(i, j int) Coefficient {
	v := m.sym.At(i, j)
	if math.IsNaN(v) {
		return Undefined()
	}
	return DefinedCoefficient(v)
}

// Lookup returns the coefficient between two named series
func (m *CorrelationMatrix) Lookup(a, b string) (Coefficient, bool) {
	i, ok := m.index[a]
	if !ok {
		return Coefficient{}, false
	}
	j, ok := m.index[b]
	if !ok {
		return Coefficient{}, false
	}
	return m.At(i, j), true
}

// Size returns the number of series
func (m *CorrelationMatrix) Size() int {
	return len(m.names)
}

// Names returns the series names in row order
func (m *CorrelationMatrix) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Rows returns the matrix as a dense row-major grid
func (m *CorrelationMatrix) Rows() [][]Coefficient {
	n := m.Size()
	rows := make([][]Coefficient, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]Coefficient, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Rounded returns a copy with every defined coefficient rounded for display.
// The diagonal stays exactly 1.
func (m *CorrelationMatrix) Rounded(places int) *CorrelationMatrix {
	out := NewCorrelationMatrix(m.names)
	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < m.Size(); j++ {
			out.Set(i, j, m.At(i, j).Rounded(places))
		}
	}
	return out
}

type matrixJSON struct {
	Series []string        `json:"series"`
	Values [][]Coefficient `json:"values"`
}

// MarshalJSON encodes the matrix as series names plus a row-major grid
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Series: m.Names(), Values: m.Rows()})
}
