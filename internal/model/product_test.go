package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProductCurrentListedPrice(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no special price", func(t *testing.T) {
		p := Product{SellingPrice: d("499.00")}
		price, special := p.CurrentListedPrice(now)
		assert.True(t, price.Equal(d("499.00")))
		assert.False(t, special)
	})

	t.Run("special inside window", func(t *testing.T) {
		p := Product{
			SellingPrice: d("499.00"),
			SpecialPrice: dp("399.00"),
			SpecialStart: dayPtr("2025-06-01"),
			SpecialEnd:   dayPtr("2025-06-30"),
		}
		price, special := p.CurrentListedPrice(now)
		assert.True(t, price.Equal(d("399.00")))
		assert.True(t, special)
	})

	t.Run("special not started", func(t *testing.T) {
		p := Product{
			SellingPrice: d("499.00"),
			SpecialPrice: dp("399.00"),
			SpecialStart: dayPtr("2025-07-01"),
		}
		price, special := p.CurrentListedPrice(now)
		assert.True(t, price.Equal(d("499.00")))
		assert.False(t, special)
	})

	t.Run("special expired", func(t *testing.T) {
		p := Product{
			SellingPrice: d("499.00"),
			SpecialPrice: dp("399.00"),
			SpecialEnd:   dayPtr("2025-06-01"),
		}
		price, special := p.CurrentListedPrice(now)
		assert.True(t, price.Equal(d("499.00")))
		assert.False(t, special)
	})

	t.Run("special with no window is always on", func(t *testing.T) {
		p := Product{
			SellingPrice: d("499.00"),
			SpecialPrice: dp("399.00"),
		}
		price, special := p.CurrentListedPrice(now)
		assert.True(t, price.Equal(d("399.00")))
		assert.True(t, special)
	})
}
