package linsolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nordicgrid/powerflow/pkg/linsolve"
)

// TestSolveTwoByTwo checks the sparse wrapper against a hand-solvable
// system: [2 1; 1 3] * x = [5; 10], x = [1, 3].
func TestSolveTwoByTwo(t *testing.T) {
	m, err := linsolve.New(2)
	require.NoError(t, err)
	defer m.Destroy()

	m.AddElement(1, 1, 2)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddElement(2, 2, 3)
	m.AddRHS(1, 5)
	m.AddRHS(2, 10)

	require.NoError(t, m.Solve())
	solution := m.Solution()
	require.InDelta(t, 1.0, solution[1], 1e-9)
	require.InDelta(t, 3.0, solution[2], 1e-9)
}

func TestOutOfRangeIndicesAreNoOps(t *testing.T) {
	m, err := linsolve.New(2)
	require.NoError(t, err)
	defer m.Destroy()

	require.NotPanics(t, func() {
		m.AddElement(0, 1, 1)
		m.AddElement(3, 1, 1)
		m.AddRHS(0, 1)
		m.AddRHS(3, 1)
	})
}
