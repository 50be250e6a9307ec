package network_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nordicgrid/powerflow/pkg/network"
)

type SystemSuite struct {
	suite.Suite
}

func (s *SystemSuite) TestBusOrderingSlackFirstThenPQThenPV() {
	sys := network.New("test", 100)
	_, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "slack")
	require.NoError(s.T(), err)
	sys.AddPV(0.1, 1.0, 138, 0, 0, 0, "pv1")
	sys.AddPQ(0.1, 0.05, 138, 0, 0, "pq1")
	sys.AddPV(0.1, 1.0, 138, 0, 0, 0, "pv2")
	sys.AddPQ(0.1, 0.05, 138, 0, 0, "pq2")

	names := make([]string, 0, len(sys.Buses))
	for _, b := range sys.Buses {
		names = append(names, b.Name)
	}
	require.Equal(s.T(), []string{"slack", "pq1", "pq2", "pv1", "pv2"}, names)
}

func (s *SystemSuite) TestBusIndexMatchesPosition() {
	sys := network.New("test", 100)
	_, _ = sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "slack")
	pq := sys.AddPQ(0.1, 0.05, 138, 0, 0, "pq1")
	require.Equal(s.T(), 1, pq.Index())
}

func (s *SystemSuite) TestMultipleSlackRejected() {
	sys := network.New("test", 100)
	_, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "s1")
	require.NoError(s.T(), err)
	_, err = sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "s2")
	require.True(s.T(), errors.Is(err, network.ErrMultipleSlack))
}

func (s *SystemSuite) TestValidateRequiresSlackAndBuses() {
	sys := network.New("test", 100)
	require.True(s.T(), errors.Is(sys.Validate(), network.ErrEmptySystem))

	sys.AddPQ(0.1, 0.05, 138, 0, 0, "pq1")
	require.True(s.T(), errors.Is(sys.Validate(), network.ErrNoSlack))

	_, err := sys.AddSlack(1.0, 138, 0, 0, 0, 0, 0, "slack")
	require.NoError(s.T(), err)
	require.NoError(s.T(), sys.Validate())
}

func (s *SystemSuite) TestDefaultSBase() {
	sys := network.New("test", 0)
	require.Equal(s.T(), 100.0, sys.SBase)
}

func TestSystemSuite(t *testing.T) {
	suite.Run(t, new(SystemSuite))
}
