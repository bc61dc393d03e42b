package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	m := FromFloat(45000)
	require.NotNil(t, m)
	assert.Equal(t, COP, m.Currency().Code)
	assert.Equal(t, int64(4500000), m.Amount())
}

func TestDisplay(t *testing.T) {
	s := Display(45000)
	assert.NotEmpty(t, s)
	assert.Contains(t, s, "45")
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 30000.0, Abs(-30000))
	assert.Equal(t, 30000.0, Abs(30000))
	assert.Equal(t, 0.0, Abs(0))
}
