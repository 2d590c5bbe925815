package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderCode(t *testing.T) {
	svc := &orderService{now: func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) }}

	code := svc.generateOrderCode()
	assert.Regexp(t, regexp.MustCompile(`^ORD-20250115-[0-9A-F]{6}$`), code)

	// The random suffix makes collisions within a day vanishingly unlikely
	assert.NotEqual(t, code, svc.generateOrderCode())
}
