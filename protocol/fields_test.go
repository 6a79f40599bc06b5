package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldsTypes(t *testing.T) {
	f, err := ParseFields("feed 3 10 50 07 30")
	require.NoError(t, err)

	assert.Equal(t, 6, f.Count())
	assert.Equal(t, 5, f.Args())
	assert.Equal(t, "feed", f.Name())
	assert.True(t, f.IsCommand("feed", 5))
	assert.False(t, f.IsCommand("feed", 2))
	assert.Equal(t, FieldAlpha, f.Type(0))
	assert.Equal(t, FieldNumeric, f.Type(1))

	v, ok := f.Integer(4)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)
}

func TestParseFieldsSeparators(t *testing.T) {
	f, err := ParseFields("  TIME   07:45 ")
	require.NoError(t, err)

	assert.True(t, f.IsCommand("time", 2))
	h, _ := f.Integer(1)
	m, _ := f.Integer(2)
	assert.Equal(t, uint32(7), h)
	assert.Equal(t, uint32(45), m)
}

func TestParseFieldsLookup(t *testing.T) {
	f, err := ParseFields("fill auto")
	require.NoError(t, err)

	assert.Equal(t, "auto", f.String(1))
	assert.Equal(t, "", f.String(5))
	assert.Equal(t, FieldType(0), f.Type(-1))

	_, ok := f.Integer(1)
	assert.False(t, ok, "alpha field is not an integer")
	_, ok = f.Integer(2)
	assert.False(t, ok, "missing field is not an integer")
}

func TestParseFieldsRejectsOverflowAndNegatives(t *testing.T) {
	f, err := ParseFields("water 99999999999 -5")
	require.NoError(t, err)

	_, ok := f.Integer(1)
	assert.False(t, ok)
	assert.Equal(t, FieldAlpha, f.Type(2))
}

func TestParseFieldsUnbalancedQuote(t *testing.T) {
	_, err := ParseFields(`fill "auto`)
	assert.Error(t, err)
}

func TestParseFieldsEmpty(t *testing.T) {
	f, err := ParseFields("   ")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Count())
	assert.Equal(t, "", f.Name())
	assert.Equal(t, 0, f.Args())
}
