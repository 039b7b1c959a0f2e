package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIota(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, Iota(3, func(i int) int { return i * 2 }))
	assert.Empty(t, Iota(0, func(i int) int { return i }))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"a!", "b!"}, Map([]string{"a", "b"}, func(s string) string { return s + "!" }))
}

func TestMapMap(t *testing.T) {
	inverted := MapMap(map[string]int{"a": 1, "b": 2}, func(k string, v int) (int, string) {
		return v, k
	})
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, inverted)
}

func TestAccumulate(t *testing.T) {
	total := Accumulate([]string{"a", "bb", "ccc"}, func(s string) int { return len(s) })
	assert.Equal(t, 6, total)
}

func TestFormatSlice(t *testing.T) {
	assert.Equal(t, "1, 2, 3", FormatSlice([]int{1, 2, 3}, ", "))
	assert.Equal(t, "", FormatSlice([]int{}, ", "))
}

func TestMakeErrorWraps(t *testing.T) {
	sentinel := errors.New("boom")
	err := MakeError(sentinel, "while doing %v", "things")

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "boom: while doing things", err.Error())
}

func TestColorizeSeverityPassthrough(t *testing.T) {
	// With color disabled (the test binary has no TTY), labels pass
	// through unchanged.
	assert.Contains(t, ColorizeSeverity("warning"), "warning")
	assert.Contains(t, ColorizeSeverity("error"), "error")
	assert.Equal(t, "info", ColorizeSeverity("info"))
}
