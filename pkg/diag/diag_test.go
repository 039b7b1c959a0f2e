package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverableReachesStreamAndRing(t *testing.T) {
	var out bytes.Buffer
	d := New(Options{Out: &out})

	d.Recoverable(errors.New("division by zero"))

	assert.Contains(t, out.String(), "warning: division by zero")
	require.Equal(t, 1, d.Ring().Len())
	assert.Equal(t, []string{"division by zero"}, d.Ring().Messages())
}

func TestQuietSuppressesStreamButNotRing(t *testing.T) {
	var out bytes.Buffer
	d := New(Options{Out: &out, Quiet: true})

	d.Warnf("no overload for %q", "add")

	assert.Empty(t, out.String())
	assert.Equal(t, 1, d.Ring().Len())
}

func TestRingCapsRetainedRecords(t *testing.T) {
	d := New(Options{RingSize: 3})

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		d.Warnf("%s", msg)
	}

	assert.Equal(t, []string{"c", "d", "e"}, d.Ring().Messages())
}
