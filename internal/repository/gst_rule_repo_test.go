package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB opens a gorm handle that renders SQL without touching a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestFindCandidatesBindsCalendarDateNotTimestamp(t *testing.T) {
	db := dryRunDB(t)

	var vars []interface{}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("capture_vars", func(tx *gorm.DB) {
		vars = tx.Statement.Vars
	}))

	repo := NewGSTRuleRepository(db)

	// Mid-afternoon clock reading; the window comparison against the DATE
	// columns must still see the plain calendar date, or a rule whose
	// end_date is today would be dropped on its inclusive last day.
	afternoon := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	_, err := repo.FindCandidates(context.Background(), 1, []int64{10, 20}, afternoon)
	require.NoError(t, err)

	require.NotEmpty(t, vars)
	assert.Contains(t, vars, "2026-08-28")
	for _, v := range vars {
		_, isTime := v.(time.Time)
		assert.False(t, isTime, "date window bounds must not be bound as timestamps, got %v", v)
	}
}
