package failure

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAndGetAll(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add("validate", "scene-1", errors.New("missing bbox"), nil)

	records := c.GetAll()
	require.Len(t, records, 1)
	require.Equal(t, "validate", records[0].StepID)
	require.Equal(t, "scene-1", records[0].ItemID)
	require.Equal(t, "missing bbox", records[0].Message)
	require.Equal(t, "str", records[0].ErrorKind)
	require.False(t, records[0].Timestamp.IsZero())
}

type customError struct{ msg string }

func (e *customError) Error() string     { return e.msg }
func (e *customError) ErrorKind() string { return "CustomError" }

func TestErrorKindUsesCustomLabelWhenAvailable(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add("transform", "scene-2", &customError{msg: "bad field"}, nil)

	records := c.GetAll()
	require.Equal(t, "CustomError", records[0].ErrorKind)
}

func TestErrorKindFallsBackForWrappedPlainError(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add("ingest", "scene-3", fmt.Errorf("read failed: %w", errors.New("eof")), nil)

	records := c.GetAll()
	require.Equal(t, "str", records[0].ErrorKind)
}

func TestCountByStep(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add("validate", "a", errors.New("x"), nil)
	c.Add("validate", "b", errors.New("y"), nil)
	c.Add("transform", "c", errors.New("z"), nil)

	counts := c.CountByStep()
	require.Equal(t, 2, counts["validate"])
	require.Equal(t, 1, counts["transform"])
	require.Equal(t, 3, c.Count())
}

func TestAddIsGoroutineSafe(t *testing.T) {
	t.Parallel()

	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Add("ingest", fmt.Sprintf("item-%d", n), errors.New("boom"), nil)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 100, c.Count())
}

func TestGetAllReturnsSnapshotCopy(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add("ingest", "a", errors.New("x"), nil)

	snapshot := c.GetAll()
	c.Add("ingest", "b", errors.New("y"), nil)

	require.Len(t, snapshot, 1)
	require.Equal(t, 2, c.Count())
}
