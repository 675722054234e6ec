// Package zakat implements nisab and zakat arithmetic for wealth (maal),
// monthly income (penghasilan) and fitrah.
package zakat

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ErrInvalidInput is returned for negative or missing amounts.
var ErrInvalidInput = errors.New("invalid zakat input")

// Params are the rates the calculations are based on.
type Params struct {
	NisabGoldGrams float64 `yaml:"nisab_gold_grams" json:"nisabGoldGrams"`
	Rate           float64 `yaml:"rate" json:"rate"`
	FitrahStapleKg float64 `yaml:"fitrah_staple_kg" json:"fitrahStapleKg"`
}

// DefaultParams: 85 g of gold, 2.5 %, 2.5 kg of staple food per person.
func DefaultParams() Params {
	return Params{NisabGoldGrams: 85, Rate: 0.025, FitrahStapleKg: 2.5}
}

// Result is the outcome of one calculation. Amount is zero when Obligatory is
// false.
type Result struct {
	Nisab      float64 `json:"nisab"`
	Basis      float64 `json:"basis"`
	Obligatory bool    `json:"obligatory"`
	Amount     float64 `json:"amount"`
}

// Nisab returns the wealth threshold for a gold price per gram.
func (p Params) Nisab(goldPricePerGram float64) float64 {
	return p.NisabGoldGrams * goldPricePerGram
}

// Maal computes zakat on total wealth held for a year.
func (p Params) Maal(goldPricePerGram, totalWealth float64) (Result, error) {
	if err := nonNegative("gold price", goldPricePerGram); err != nil {
		return Result{}, err
	}
	if err := nonNegative("total wealth", totalWealth); err != nil {
		return Result{}, err
	}
	return p.assess(p.Nisab(goldPricePerGram), totalWealth)
}

// Income computes monthly zakat on net income against one twelfth of the
// annual nisab.
func (p Params) Income(goldPricePerGram, monthlyNetIncome float64) (Result, error) {
	if err := nonNegative("gold price", goldPricePerGram); err != nil {
		return Result{}, err
	}
	if err := nonNegative("monthly income", monthlyNetIncome); err != nil {
		return Result{}, err
	}
	return p.assess(p.Nisab(goldPricePerGram)/12, monthlyNetIncome)
}

// Fitrah computes zakat al-fitr for a number of people. Both inputs must be
// positive.
func (p Params) Fitrah(stapleFoodPricePerKg float64, people int) (Result, error) {
	if people <= 0 {
		return Result{}, fmt.Errorf("%w: number of people must be positive", ErrInvalidInput)
	}
	if stapleFoodPricePerKg <= 0 || math.IsNaN(stapleFoodPricePerKg) || math.IsInf(stapleFoodPricePerKg, 0) {
		return Result{}, fmt.Errorf("%w: staple food price must be positive", ErrInvalidInput)
	}
	amount := float64(people) * p.FitrahStapleKg * stapleFoodPricePerKg
	if err := finite("amount", amount); err != nil {
		return Result{}, err
	}
	return Result{
		Basis:      float64(people),
		Obligatory: true,
		Amount:     amount,
	}, nil
}

func (p Params) assess(nisab, basis float64) (Result, error) {
	if err := finite("nisab", nisab); err != nil {
		return Result{}, err
	}
	r := Result{Nisab: nisab, Basis: basis}
	if basis >= nisab {
		r.Obligatory = true
		r.Amount = basis * p.Rate
	}
	if err := finite("amount", r.Amount); err != nil {
		return Result{}, err
	}
	return r, nil
}

// finite rejects results that overflowed float64.
func finite(field string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidInput, field)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, field)
	}
	return nil
}

// FormatRupiah renders an amount as "Rp 1.234.567", rounded to whole rupiah.
func FormatRupiah(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return "Rp " + sign + humanize.FormatFloat("#.###,", math.Round(amount))
}
