package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"otabridge/internal/domains/quote/model"
	rateModel "otabridge/internal/domains/rate/model"
	"otabridge/internal/ota"
)

func tiers(pairs ...int64) rateModel.BaseGuestAmounts {
	out := rateModel.BaseGuestAmounts{}
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, rateModel.BaseGuestAmount{Amount: decimal.NewFromInt(pairs[i]), NumberOfGuests: int(pairs[i+1])})
	}

	return out
}

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name     string
		tiers    rateModel.BaseGuestAmounts
		guests   int
		expected int
	}{
		{name: "exact match beats lower tier", tiers: tiers(150, 1, 180, 2), guests: 2, expected: 2},
		{name: "highest tier below guests", tiers: tiers(150, 1, 180, 2), guests: 4, expected: 2},
		{name: "lowest tier when all exceed guests", tiers: tiers(200, 3, 260, 4), guests: 1, expected: 3},
		{name: "single tier", tiers: tiers(99, 2), guests: 2, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.SelectTier(tt.tiers, tt.guests).NumberOfGuests)
		})
	}
}

func TestPrice(t *testing.T) {
	surcharges := rateModel.AdditionalGuestAmounts{
		{AgeQualifyingCode: ota.AgeQualifyingAdult, Amount: decimal.NewFromInt(40)},
		{AgeQualifyingCode: ota.AgeQualifyingChild, Amount: decimal.RequireFromString("20.50")},
	}

	tests := []struct {
		name         string
		rate         rateModel.Rate
		adults       int
		children     int
		perRoom      string
		extraAdults  int
		missingAdult bool
		missingChild bool
	}{
		{
			name:    "guests within tier pay base only",
			rate:    rateModel.Rate{BaseGuestAmounts: tiers(180, 2), AdditionalGuestAmounts: surcharges},
			adults:  2,
			perRoom: "180",
		},
		{
			name:        "one extra adult and one child",
			rate:        rateModel.Rate{BaseGuestAmounts: tiers(180, 2), AdditionalGuestAmounts: surcharges},
			adults:      3,
			children:    1,
			perRoom:     "240.5",
			extraAdults: 1,
		},
		{
			name:     "children over the tier pay the child surcharge",
			rate:     rateModel.Rate{BaseGuestAmounts: tiers(150, 1, 180, 2), AdditionalGuestAmounts: surcharges},
			adults:   1,
			children: 2,
			perRoom:  "221",
		},
		{
			name:     "children within the tier are free",
			rate:     rateModel.Rate{BaseGuestAmounts: tiers(180, 3), AdditionalGuestAmounts: surcharges},
			adults:   2,
			children: 1,
			perRoom:  "180",
		},
		{
			name:         "missing surcharges are free and flagged",
			rate:         rateModel.Rate{BaseGuestAmounts: tiers(180, 2)},
			adults:       3,
			children:     1,
			perRoom:      "180",
			extraAdults:  1,
			missingAdult: true,
			missingChild: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge := model.Price(tt.rate, tt.adults, tt.children)

			assert.True(t, decimal.RequireFromString(tt.perRoom).Equal(charge.PerRoom), "per room %s", charge.PerRoom)
			assert.Equal(t, tt.extraAdults, charge.AdditionalAdults)
			assert.Equal(t, tt.missingAdult, charge.MissingAdultSurcharge)
			assert.Equal(t, tt.missingChild, charge.MissingChildSurcharge)
			assert.True(t, charge.BaseRate.Add(charge.AdultCharge).Add(charge.ChildCharge).Equal(charge.PerRoom))
		})
	}
}

func TestStay_Nights(t *testing.T) {
	stay := model.Stay{
		Start: mustDate(t, "2030-05-30"),
		End:   mustDate(t, "2030-06-02"),
	}

	nights := stay.Nights()

	assert.Len(t, nights, 3)
	assert.Equal(t, "2030-05-30", nights[0].Format("2006-01-02"))
	assert.Equal(t, "2030-06-01", nights[2].Format("2006-01-02"))
}

func TestStay_Validate(t *testing.T) {
	valid := model.Stay{
		HotelCode:    "H1",
		RoomTypeCode: "DBL",
		Start:        mustDate(t, "2030-05-01"),
		End:          mustDate(t, "2030-05-03"),
		Adults:       2,
		Rooms:        1,
	}

	tests := []struct {
		name   string
		mutate func(*model.Stay)
		valid  bool
	}{
		{name: "valid", mutate: func(*model.Stay) {}, valid: true},
		{name: "no adults", mutate: func(s *model.Stay) { s.Adults = 0 }},
		{name: "negative children", mutate: func(s *model.Stay) { s.Children = -1 }},
		{name: "no rooms", mutate: func(s *model.Stay) { s.Rooms = 0 }},
		{name: "same day checkout", mutate: func(s *model.Stay) { s.End = s.Start }},
		{name: "inverted dates", mutate: func(s *model.Stay) { s.Start, s.End = s.End, s.Start }},
		{name: "missing hotel", mutate: func(s *model.Stay) { s.HotelCode = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stay := valid
			tt.mutate(&stay)

			err := stay.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
