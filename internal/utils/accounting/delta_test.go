package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeltaFor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		isIncome bool
		want     string
	}{
		{"income adds", "500.00", true, "500.00"},
		{"expense subtracts", "200.00", false, "-200.00"},
		{"zero income is zero", "0", true, "0"},
		{"zero expense is zero", "0", false, "0"},
		{"fractional expense", "42.50", false, "-42.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			want := decimal.RequireFromString(tt.want)
			got := DeltaFor(amount, tt.isIncome)
			assert.True(t, want.Equal(got), "want %s got %s", want, got)
		})
	}
}

func TestDirectionFromFeed(t *testing.T) {
	tests := []struct {
		name       string
		feedAmount string
		wantMag    string
		wantIncome bool
	}{
		{"negative feed amount is income", "-42.50", "42.50", true},
		{"positive feed amount is expense", "13.37", "13.37", false},
		{"zero is expense by convention", "0", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag, isIncome := DirectionFromFeed(decimal.RequireFromString(tt.feedAmount))
			assert.True(t, decimal.RequireFromString(tt.wantMag).Equal(mag))
			assert.Equal(t, tt.wantIncome, isIncome)
		})
	}
}

func TestFeedRoundTrip(t *testing.T) {
	// The delta applied for a mapped feed record must equal the negated feed
	// amount: feed -42.50 (income) raises the balance by 42.50.
	feedAmount := decimal.RequireFromString("-42.50")
	mag, isIncome := DirectionFromFeed(feedAmount)
	delta := DeltaFor(mag, isIncome)
	assert.True(t, feedAmount.Neg().Equal(delta))
}
