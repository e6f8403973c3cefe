package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(t *testing.T, unsup bool, fn func(string) error) {
	t.Helper()
	oldWrite, oldUnsup := writeAll, unsupported
	writeAll = fn
	unsupported = func() bool { return unsup }
	t.Cleanup(func() { writeAll, unsupported = oldWrite, oldUnsup })
}

func TestCopy(t *testing.T) {
	var got string
	stub(t, false, func(s string) error { got = s; return nil })

	require.NoError(t, Copy("S:: a fox"))
	assert.Equal(t, "S:: a fox", got)
}

func TestCopy_WriteFails(t *testing.T) {
	boom := errors.New("xclip exited 1")
	stub(t, false, func(string) error { return boom })

	err := Copy("x")
	assert.ErrorIs(t, err, boom)
}

func TestCopy_Unsupported(t *testing.T) {
	called := false
	stub(t, true, func(string) error { called = true; return nil })

	assert.ErrorIs(t, Copy("x"), ErrUnsupported)
	assert.False(t, called)
}
