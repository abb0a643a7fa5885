package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for n, want := range cases {
		assert.Equal(t, want, ColumnName(n), "column %d", n)
		assert.Equal(t, n, ColumnNumber(want), "column %s", want)
	}
	assert.Equal(t, 0, ColumnNumber("A1"))
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", CellName(1, 1))
	assert.Equal(t, "O9", CellName(9, 15))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A1:O1")
	require.NoError(t, err)
	assert.Equal(t, NewRange(1, 1, 1, 15), r)
	assert.Equal(t, "A1:O1", r.String())

	r, err = ParseRange("$J$20:J9")
	require.NoError(t, err)
	assert.Equal(t, NewRange(9, 10, 12, 1), r)

	r, err = ParseRange("B3")
	require.NoError(t, err)
	assert.Equal(t, "B3", r.String())

	_, err = ParseRange("9A")
	assert.Error(t, err)
}
