package types

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSafeFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"finite value passes through", 42.5, 42.5},
		{"zero passes through", 0, 0},
		{"negative passes through", -7.25, -7.25},
		{"NaN collapses to zero", math.NaN(), 0},
		{"positive infinity collapses to zero", math.Inf(1), 0},
		{"negative infinity collapses to zero", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFloat64(tt.in))
		})
	}
}

func TestToFloat64(t *testing.T) {
	assert.InDelta(t, 19.99, ToFloat64(MustMoney("19.99")), 1e-9)
	assert.Equal(t, float64(0), ToFloat64(decimal.Zero))

	// Beyond float64 range: the conversion overflows to Inf and must
	// come back as zero instead
	huge := MustMoney("1e400")
	assert.Equal(t, float64(0), ToFloat64(huge))
	assert.Equal(t, float64(0), ToFloat64(huge.Neg()))
}

func TestMustMoney(t *testing.T) {
	assert.True(t, MustMoney("3.00").Equal(decimal.NewFromInt(3)))
	assert.Panics(t, func() { MustMoney("not a number") })
}
