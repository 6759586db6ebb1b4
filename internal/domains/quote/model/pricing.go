package model

import (
	"otabridge/internal/ota"
	rateModel "otabridge/internal/domains/rate/model"

	"github.com/shopspring/decimal"
)

// Charge is the nightly price of one room under one rate.
type Charge struct {
	BaseRate         decimal.Decimal
	BaseGuests       int
	AdditionalAdults int
	AdultCharge      decimal.Decimal
	Children         int
	ChildCharge      decimal.Decimal
	PerRoom          decimal.Decimal

	MissingAdultSurcharge bool
	MissingChildSurcharge bool
}

// SelectTier picks the tier whose guest count equals guests, else the largest
// tier below guests, else the smallest tier. tiers must not be empty.
func SelectTier(tiers rateModel.BaseGuestAmounts, guests int) rateModel.BaseGuestAmount {
	var (
		below    rateModel.BaseGuestAmount
		hasBelow bool
		lowest   = tiers[0]
	)

	for _, tier := range tiers {
		if tier.NumberOfGuests == guests {
			return tier
		}

		if tier.NumberOfGuests < lowest.NumberOfGuests {
			lowest = tier
		}

		if tier.NumberOfGuests < guests && (!hasBelow || tier.NumberOfGuests > below.NumberOfGuests) {
			below = tier
			hasBelow = true
		}
	}

	if hasBelow {
		return below
	}

	return lowest
}

// Price computes the per-room nightly charge. Guests beyond the selected
// tier pay the adult or child surcharge; a surcharge the rate does not
// define is charged as zero and flagged on the result.
func Price(rate rateModel.Rate, adults, children int) Charge {
	tier := SelectTier(rate.BaseGuestAmounts, adults+children)

	charge := Charge{
		BaseRate:    tier.Amount,
		BaseGuests:  tier.NumberOfGuests,
		AdultCharge: decimal.Zero,
		ChildCharge: decimal.Zero,
	}

	if adults+children > tier.NumberOfGuests {
		charge.AdditionalAdults = max(0, adults-tier.NumberOfGuests)

		if charge.AdditionalAdults > 0 {
			surcharge, ok := rate.AdditionalGuestAmounts.Surcharge(ota.AgeQualifyingAdult)
			charge.MissingAdultSurcharge = !ok
			charge.AdultCharge = surcharge.Mul(decimal.NewFromInt(int64(charge.AdditionalAdults)))
		}

		if children > 0 {
			surcharge, ok := rate.AdditionalGuestAmounts.Surcharge(ota.AgeQualifyingChild)
			charge.Children = children
			charge.MissingChildSurcharge = !ok
			charge.ChildCharge = surcharge.Mul(decimal.NewFromInt(int64(children)))
		}
	}

	charge.PerRoom = charge.BaseRate.Add(charge.AdultCharge).Add(charge.ChildCharge)

	return charge
}
