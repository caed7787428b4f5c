package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core/id"
)

var productW = id.MustParse("01890000-0000-7000-8000-000000000011")

func TestUnitCost(t *testing.T) {
	when := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	p := New(productW, decimal.NewFromInt(100), decimal.NewFromInt(250), when)
	assert.True(t, p.UnitCost().Equal(decimal.RequireFromString("2.5")))

	free := New(productW, decimal.Zero, decimal.Zero, when)
	assert.True(t, free.UnitCost().IsZero())
}

func TestValidate(t *testing.T) {
	when := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(p *Purchase)
		wantErr bool
	}{
		{"valid", func(p *Purchase) {}, false},
		{"missing product", func(p *Purchase) { p.ProductID = id.Nil() }, true},
		{"negative quantity", func(p *Purchase) { p.Quantity = decimal.NewFromInt(-1) }, true},
		{"negative total cost", func(p *Purchase) { p.TotalCost = decimal.NewFromInt(-1) }, true},
		{"zero purchase date", func(p *Purchase) { p.PurchasedAt = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(productW, decimal.NewFromInt(10), decimal.NewFromInt(40), when)
			tt.mutate(p)

			err := p.Validate(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
