package model_test

import (
	"otabridge/internal/domains/rate/model"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate_AppliesOn(t *testing.T) {
	var rate model.Rate
	rate.SetWeekdays([7]bool{true, false, false, false, true, true, false})

	expected := map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   false,
		time.Wednesday: false,
		time.Thursday:  false,
		time.Friday:    true,
		time.Saturday:  true,
		time.Sunday:    false,
	}

	for day, want := range expected {
		assert.Equal(t, want, rate.AppliesOn(day), day.String())
	}
}

func TestRate_Covers(t *testing.T) {
	rate := model.Rate{
		StartDate: time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 5, 31, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{name: "first day", date: rate.StartDate, want: true},
		{name: "last day", date: rate.EndDate, want: true},
		{name: "inside", date: time.Date(2030, 5, 15, 0, 0, 0, 0, time.UTC), want: true},
		{name: "day before", date: time.Date(2030, 4, 30, 0, 0, 0, 0, time.UTC), want: false},
		{name: "day after", date: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rate.Covers(tt.date))
		})
	}
}

func TestGuestAmounts_ValueScan(t *testing.T) {
	base := model.BaseGuestAmounts{
		{Amount: decimal.RequireFromString("150.50"), NumberOfGuests: 1},
		{Amount: decimal.RequireFromString("180"), NumberOfGuests: 2},
	}

	value, err := base.Value()
	require.NoError(t, err)

	var scanned model.BaseGuestAmounts
	require.NoError(t, scanned.Scan([]byte(value.(string))))
	require.Len(t, scanned, 2)
	assert.True(t, scanned[0].Amount.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, 2, scanned[1].NumberOfGuests)

	var extra model.AdditionalGuestAmounts
	require.NoError(t, extra.Scan(`[{"age_qualifying_code":"10","amount":"40"}]`))

	surcharge, ok := extra.Surcharge("10")
	assert.True(t, ok)
	assert.True(t, surcharge.Equal(decimal.NewFromInt(40)))

	_, ok = extra.Surcharge("8")
	assert.False(t, ok)

	assert.Error(t, extra.Scan(42))
}
