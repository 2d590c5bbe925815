package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestGSTRuleInWindow(t *testing.T) {
	cases := []struct {
		name  string
		start *time.Time
		end   *time.Time
		at    time.Time
		want  bool
	}{
		{"unbounded always matches", nil, nil, day("2025-06-15"), true},
		{"inside window", dayPtr("2025-06-01"), dayPtr("2025-06-30"), day("2025-06-15"), true},
		{"start day inclusive", dayPtr("2025-06-01"), dayPtr("2025-06-30"), day("2025-06-01"), true},
		{"end day inclusive", dayPtr("2025-06-01"), dayPtr("2025-06-30"), day("2025-06-30"), true},
		{"end day with later clock time", dayPtr("2025-06-01"), dayPtr("2025-06-30"), time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC), true},
		{"before start", dayPtr("2025-06-01"), nil, day("2025-05-31"), false},
		{"after end", nil, dayPtr("2025-06-30"), day("2025-07-01"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := GSTRule{StartDate: tc.start, EndDate: tc.end}
			assert.Equal(t, tc.want, r.InWindow(tc.at))
		})
	}
}

func TestGSTRuleInWindow_DayBoundaryIsTimezoneStable(t *testing.T) {
	r := GSTRule{StartDate: dayPtr("2025-06-01"), EndDate: dayPtr("2025-06-30")}

	// Late evening on the last valid day in a UTC-7 zone is already July 1
	// in UTC; the local calendar date is what counts
	pacific := time.FixedZone("UTC-7", -7*60*60)
	assert.True(t, r.InWindow(time.Date(2025, 6, 30, 18, 0, 0, 0, pacific)))

	// Early morning on the first valid day in UTC+5:30 is still May 31 in UTC
	ist := time.FixedZone("UTC+5:30", 5*60*60+30*60)
	assert.True(t, r.InWindow(time.Date(2025, 6, 1, 2, 0, 0, 0, ist)))

	// The local day after the window stays excluded
	assert.False(t, r.InWindow(time.Date(2025, 7, 1, 1, 0, 0, 0, pacific)))
}

func TestGSTRuleMatchesPrice_AnyIgnoresValue(t *testing.T) {
	r := GSTRule{PriceConditionType: PriceCondAny}
	assert.True(t, r.MatchesPrice(d("0")))
	assert.True(t, r.MatchesPrice(d("999999.99")))
}

func TestGSTRuleMatchesPrice_MissingThresholdNeverMatches(t *testing.T) {
	r := GSTRule{PriceConditionType: PriceCondLessThan}
	assert.False(t, r.MatchesPrice(d("1")))
}

func TestGSTRuleMatchesPrice_UnknownConditionNeverMatches(t *testing.T) {
	r := GSTRule{PriceConditionType: "BETWEEN", PriceConditionValue: dp("100")}
	assert.False(t, r.MatchesPrice(d("50")))
}

func TestGSTRuleMatchesPrice_DecimalScaleDoesNotAffectEquality(t *testing.T) {
	r := GSTRule{PriceConditionType: PriceCondEqual, PriceConditionValue: dp("100.00")}
	assert.True(t, r.MatchesPrice(d("100")))
}
