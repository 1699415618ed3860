package dag

import (
	"testing"

	stacerrors "github.com/stacflow/stacflow/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCompileOrdersLinearChain(t *testing.T) {
	t.Parallel()

	order, err := Compile([]Node{
		{ID: "sink", DependsOn: []string{"transform"}},
		{ID: "ingest"},
		{ID: "transform", DependsOn: []string{"ingest"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ingest", "transform", "sink"}, order)
}

func TestCompileRejectsUndeclaredDependency(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Node{{ID: "x", DependsOn: []string{"ghost"}}})
	require.Error(t, err)
	require.True(t, stacerrors.IsConfiguration(err))
}

func TestCompileRejectsCycle(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Node{
		{ID: "x", DependsOn: []string{"y"}},
		{ID: "y", DependsOn: []string{"x"}},
	})
	require.Error(t, err)
	require.True(t, stacerrors.IsConfiguration(err))
	require.Contains(t, err.Error(), "cycle")
}

func TestCompileRejectsFanOut(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Node{
		{ID: "ingest"},
		{ID: "branch-a", DependsOn: []string{"ingest"}},
		{ID: "branch-b", DependsOn: []string{"ingest"}},
	})
	require.Error(t, err)
	require.True(t, stacerrors.IsConfiguration(err))
}

func TestCompileRejectsFanIn(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Node{
		{ID: "a"},
		{ID: "b"},
		{ID: "sink", DependsOn: []string{"a", "b"}},
	})
	require.Error(t, err)
}

func TestCompileRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Node{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)
}

func TestCompileRejectsEmptyWorkflow(t *testing.T) {
	t.Parallel()

	_, err := Compile(nil)
	require.Error(t, err)
}
