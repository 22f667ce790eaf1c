package airports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_KnownPair(t *testing.T) {
	d, ok := Distance("LAX", "JFK")
	assert.True(t, ok)
	assert.InDelta(t, 2470, d, 30)
}

func TestDistance_Symmetric(t *testing.T) {
	ab, _ := Distance("DEN", "ORD")
	ba, _ := Distance("ORD", "DEN")
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestDistance_CaseInsensitive(t *testing.T) {
	d, ok := Distance("lax", "sfo")
	assert.True(t, ok)
	assert.Greater(t, d, 300.0)
}

func TestDistance_Unknown(t *testing.T) {
	_, ok := Distance("LAX", "ZZZ")
	assert.False(t, ok)
}

func TestDistance_Nearby(t *testing.T) {
	d, ok := Distance("JFK", "LGA")
	assert.True(t, ok)
	assert.Less(t, d, 20.0)
}
