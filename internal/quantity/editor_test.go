package quantity

import (
	"fmt"
	"testing"

	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T, stock, initial int) *Editor {
	t.Helper()
	e, err := New(stock, initial)
	require.NoError(t, err)
	return e
}

func TestCommitWithinBoundsSucceeds(t *testing.T) {
	for _, stock := range []int{1, 2, 7, 50} {
		for q := 1; q <= stock; q++ {
			e := newEditor(t, stock, 1)
			got, err := e.Commit(fmt.Sprint(q))
			require.NoError(t, err, "stock=%d q=%d", stock, q)
			assert.Equal(t, q, got)
			assert.Equal(t, q, e.Committed())
			assert.Equal(t, fmt.Sprint(q), e.Display())
		}
	}
}

func TestCommitRejectsInvalidInputAndReverts(t *testing.T) {
	for _, text := range []string{"", "  ", "abc", "0", "-3", "2.5", "1e3"} {
		e := newEditor(t, 50, 20)

		got, err := e.Commit(text)
		require.Error(t, err, "input %q", text)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidQuantity), "input %q: %v", text, err)
		assert.Equal(t, 20, got)
		assert.Equal(t, 20, e.Committed())
		assert.Equal(t, "20", e.Display())

		// rejecting twice leaves the same state
		_, _ = e.Commit(text)
		assert.Equal(t, 20, e.Committed())
	}
}

func TestCommitAboveStockClampsToMax(t *testing.T) {
	for _, q := range []string{"51", "60", "1000", "99999999999999999999"} {
		e := newEditor(t, 50, 20)

		got, err := e.Commit(q)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded))
		max, ok := MaxAllowed(err)
		require.True(t, ok)
		assert.Equal(t, 50, max)
		assert.Equal(t, 50, got)
		assert.Equal(t, 50, e.Committed())
		assert.Equal(t, "50", e.Display())
	}
}

func TestCommitHugeNegativeIsInvalid(t *testing.T) {
	e := newEditor(t, 50, 20)

	got, err := e.Commit("-99999999999999999999")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidQuantity))
	assert.Equal(t, 20, got)
	assert.Equal(t, 20, e.Committed())
}

func TestCommitTrimsWhitespace(t *testing.T) {
	e := newEditor(t, 10, 1)
	got, err := e.Commit(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestDecrementBelowOneIsInvalid(t *testing.T) {
	e := newEditor(t, 5, 2)

	got, err := e.Decrement()
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = e.Decrement()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidQuantity))
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, e.Committed())
}

func TestIncrementAboveStockIsExceeded(t *testing.T) {
	e := newEditor(t, 3, 2)

	got, err := e.Increment()
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = e.Increment()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded))
	assert.Equal(t, 3, got)
}

func TestNewValidatesInitial(t *testing.T) {
	_, err := New(10, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidQuantity))

	_, err = New(10, 11)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded))

	_, err = New(0, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded))
}

func TestSetStockClampsCommitted(t *testing.T) {
	e := newEditor(t, 50, 40)

	require.NoError(t, e.SetStock(45))
	assert.Equal(t, 40, e.Committed())

	err := e.SetStock(30)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockExceeded))
	assert.Equal(t, 30, e.Committed())
	assert.Equal(t, 30, e.Stock())

	assert.Error(t, e.SetStock(0))
	assert.Equal(t, 30, e.Stock())
}

func TestMaxAllowedIgnoresOtherErrors(t *testing.T) {
	_, ok := MaxAllowed(InvalidQuantity("nope"))
	assert.False(t, ok)
	_, ok = MaxAllowed(nil)
	assert.False(t, ok)
}
