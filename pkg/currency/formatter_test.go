package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.0, Round2(2.0))
	assert.Equal(t, 1.67, Round2(1.666666))
	assert.Equal(t, 0.13, Round2(0.125))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 30.0, Percent(150, 500, 1))
	assert.Equal(t, 33.3, Percent(1, 3, 1))
	assert.Equal(t, 0.0, Percent(10, 0, 1))
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5.5, "$5.50"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-42.05, "-$42.05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(tt.in))
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", FormatInt(0))
	assert.Equal(t, "999", FormatInt(999))
	assert.Equal(t, "52,500", FormatInt(52500))
	assert.Equal(t, "1,000,000", FormatInt(1000000))
	assert.Equal(t, "-7,500", FormatInt(-7500))
}
