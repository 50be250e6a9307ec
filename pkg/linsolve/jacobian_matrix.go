// Package linsolve wraps the sparse modified-nodal solver used by the
// teacher SPICE engine to solve the dense-per-iteration real linear
// correction system J*delta = F of the Newton-Raphson power-flow driver.
package linsolve

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// JacobianMatrix holds the reduced real Jacobian and mismatch vector for
// one Newton-Raphson iteration, in the shape of the teacher's
// CircuitMatrix. Package jacobian allocates a fresh one for every
// iteration; Clear allows a caller to re-stamp an existing one instead.
type JacobianMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
}

// New allocates a size*size real linear system. 1-based indexing, as in
// the underlying sparse package: valid row/column indices run 1..Size.
func New(size int) (*JacobianMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("linsolve: creating matrix: %w", err)
	}

	return &JacobianMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
	}, nil
}

// AddElement accumulates value into J[i,j] (1-based).
func (m *JacobianMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

// AddRHS accumulates value into F[i] (1-based).
func (m *JacobianMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		return
	}
	m.rhs[i] += value
}

// Clear zeroes the matrix and RHS for the next iteration's stamp.
func (m *JacobianMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

// Solve factors J and solves J*delta = F in place, leaving the result
// in Solution(). LU with partial pivoting, per spec.md section 4.3.
func (m *JacobianMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("linsolve: factoring jacobian: %w", err)
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("linsolve: solving jacobian: %w", err)
	}
	m.solution = solution
	return nil
}

// Solution returns the last solve's result, 1-indexed (Solution()[0] is unused).
func (m *JacobianMatrix) Solution() []float64 { return m.solution }

// Destroy releases the underlying sparse matrix.
func (m *JacobianMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
