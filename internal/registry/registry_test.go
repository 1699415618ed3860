package registry

import (
	"errors"
	"testing"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	stacerrors "github.com/stacflow/stacflow/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeSource struct{}

func (fakeSource) Fetch(ctx *execctx.Context) (Sequence, error) { return nil, nil }

type fakeTransformer struct{}

func (fakeTransformer) Modify(it item.Item, ctx *execctx.Context) (item.Item, error) {
	return it, nil
}

type fakeSink struct{}

func (fakeSink) Accept(it item.Item, ctx *execctx.Context) error { return nil }
func (fakeSink) Finalize(ctx *execctx.Context) error             { return nil }

type fakeAmbiguous struct{}

func (fakeAmbiguous) Fetch(ctx *execctx.Context) (Sequence, error) { return nil, nil }
func (fakeAmbiguous) Modify(it item.Item, ctx *execctx.Context) (item.Item, error) {
	return it, nil
}

type fakeNeither struct{}

func TestBuildClassifiesSource(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("ingest", func(cfg map[string]any) (any, error) { return fakeSource{}, nil })

	instance, role, err := r.Build("step-1", "ingest", nil)
	require.NoError(t, err)
	require.Equal(t, RoleSource, role)
	require.IsType(t, fakeSource{}, instance)
}

func TestBuildClassifiesTransformerAndSink(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("transform", func(cfg map[string]any) (any, error) { return fakeTransformer{}, nil })
	r.Register("sink", func(cfg map[string]any) (any, error) { return fakeSink{}, nil })

	_, role, err := r.Build("s1", "transform", nil)
	require.NoError(t, err)
	require.Equal(t, RoleTransformer, role)

	_, role, err = r.Build("s2", "sink", nil)
	require.NoError(t, err)
	require.Equal(t, RoleSink, role)
}

func TestBuildRejectsUnknownModule(t *testing.T) {
	t.Parallel()

	r := New()
	_, _, err := r.Build("s1", "ghost", nil)
	require.Error(t, err)
	require.True(t, stacerrors.IsConfiguration(err))
}

func TestBuildRejectsConstructorError(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("ingest", func(cfg map[string]any) (any, error) { return nil, errors.New("bad config") })

	_, _, err := r.Build("s1", "ingest", nil)
	require.Error(t, err)
	require.True(t, stacerrors.IsConfiguration(err))
}

func TestBuildRejectsAmbiguousRole(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("weird", func(cfg map[string]any) (any, error) { return fakeAmbiguous{}, nil })

	_, _, err := r.Build("s1", "weird", nil)
	require.Error(t, err)
}

func TestBuildRejectsModuleWithNoRole(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("nothing", func(cfg map[string]any) (any, error) { return fakeNeither{}, nil })

	_, _, err := r.Build("s1", "nothing", nil)
	require.Error(t, err)
}
