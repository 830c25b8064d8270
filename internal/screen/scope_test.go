package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRunsWhileAlive(t *testing.T) {
	s := NewScope(context.Background(), "cart")
	applied := false

	require.NoError(t, s.Apply(func() error { applied = true; return nil }))
	assert.True(t, applied)
}

func TestApplyAfterDisposeIsStale(t *testing.T) {
	s := NewScope(context.Background(), "cart")
	s.Dispose()
	s.Dispose()

	applied := false
	err := s.Apply(func() error { applied = true; return nil })
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStaleResponse))
	assert.False(t, applied)
	assert.True(t, s.Disposed())
	assert.Error(t, s.Context().Err())
}

func TestGoDropsLateResponse(t *testing.T) {
	s := NewScope(context.Background(), "product")
	release := make(chan struct{})
	applied := false

	done := Go(s, func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	}, func(v int) error {
		applied = true
		return nil
	})

	s.Dispose()
	close(release)

	select {
	case err := <-done:
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStaleResponse))
	case <-time.After(time.Second):
		t.Fatal("fetch never completed")
	}
	s.Wait()
	assert.False(t, applied)
}

func TestGoAppliesLiveResponse(t *testing.T) {
	s := NewScope(context.Background(), "product")
	var got int

	err := <-Go(s, func(ctx context.Context) (int, error) {
		return 7, nil
	}, func(v int) error {
		got = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestGoPropagatesFetchError(t *testing.T) {
	s := NewScope(context.Background(), "product")
	boom := errors.New("boom")

	err := <-Go(s, func(ctx context.Context) (int, error) {
		return 0, boom
	}, func(int) error {
		t.Fatal("apply must not run")
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestPackageApplyWithoutScopeRunsDirectly(t *testing.T) {
	ran := false
	require.NoError(t, Apply(context.Background(), func() error { ran = true; return nil }))
	assert.True(t, ran)

	s := NewScope(context.Background(), "cart")
	s.Dispose()
	err := Apply(WithScope(context.Background(), s), func() error { return nil })
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStaleResponse))
}

func TestRegistryOpenDisposesPrevious(t *testing.T) {
	r := NewRegistry(context.Background())

	first := r.Open("cart")
	second := r.Open("cart")
	assert.True(t, first.Disposed())
	assert.False(t, second.Disposed())
	assert.Same(t, second, r.Acquire("cart"))
	assert.Equal(t, []string{"cart"}, r.Live())
}

func TestRegistryCloseAndAcquire(t *testing.T) {
	r := NewRegistry(context.Background())

	s := r.Acquire("checkout")
	assert.True(t, r.Close("checkout"))
	assert.True(t, s.Disposed())
	assert.False(t, r.Close("checkout"))

	fresh := r.Acquire("checkout")
	assert.NotSame(t, s, fresh)

	r.Acquire("cart")
	r.CloseAll()
	assert.Empty(t, r.Live())
	assert.True(t, fresh.Disposed())
}
