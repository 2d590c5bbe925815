package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults pass through", 1, 20, 1, 20, 0},
		{"zero page falls back", 0, 20, 1, 20, 0},
		{"negative page falls back", -3, 20, 1, 20, 0},
		{"zero limit falls back", 2, 0, 2, 20, 20},
		{"limit capped at max", 1, 500, 1, 100, 0},
		{"offset from page", 3, 10, 3, 10, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Normalize(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.Equal(t, tc.wantOffset, p.Offset)
		})
	}
}

func TestParseFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=4&limit=abc", nil)

	p := Parse(c)
	assert.Equal(t, 4, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 60, p.Offset)
}

func TestTotalPages(t *testing.T) {
	p := Params{Limit: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 5, p.TotalPages(100))
}
