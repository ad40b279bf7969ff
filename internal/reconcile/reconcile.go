// Package reconcile derives the converted, taxable and tax amounts of a
// financial record from its user-supplied inputs. Reconcile is a pure
// function: it performs no I/O, reads only its arguments and returns a new
// value, so it is safe to call concurrently without locking. All external
// facts (workspace default currency, tax rate) are resolved by the caller.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/tallieo/bookkeeper/internal/domain"
)

// fullBusinessUse is the percent applied to incomes, which have no partial
// business attribution concept.
const fullBusinessUse = 100

// Reconcile recomputes every derived field of rec from scratch and returns
// the result. It is total over well-formed input and idempotent: feeding its
// output back in with unchanged inputs reproduces the same output.
func Reconcile(rec domain.FinancialRecord, defaultCurrency string, tax *domain.ResolvedTax) domain.FinancialRecord {
	pct := rec.PercentOnBusiness
	if rec.Kind == domain.KindIncome {
		pct = fullBusinessUse
	}

	// A record already in the workspace default currency needs no external
	// conversion and cannot carry a dedicated tax exchange rate.
	if rec.Currency == defaultCurrency {
		amount := rec.OriginalAmount
		rec.ConvertedAmounts.Original = &amount
		rec.UseDifferentExchangeRateForTaxPurposes = false
	}

	// Without a dedicated tax rate the taxable view mirrors the converted
	// view, overriding whatever the caller supplied for it.
	if !rec.UseDifferentExchangeRateForTaxPurposes {
		rec.TaxableAmounts.Original = copyAmount(rec.ConvertedAmounts.Original)
	}

	switch {
	case rec.ConvertedAmounts.Original == nil:
		rec.Status = domain.StatusPendingConversion
		rec.ConvertedAmounts = domain.AmountPair{}
		rec.TaxableAmounts = domain.AmountPair{}
		rec.TaxRateInBps = nil
		rec.TaxAmount = nil

	case rec.TaxableAmounts.Original == nil:
		rec.Status = domain.StatusPendingConversionForTaxation
		adjusted, _ := adjust(*rec.ConvertedAmounts.Original, pct, tax)
		rec.ConvertedAmounts.Adjusted = &adjusted
		rec.TaxableAmounts = domain.AmountPair{}
		rec.TaxRateInBps = nil
		rec.TaxAmount = nil

	default:
		rec.Status = domain.StatusFinalized
		convAdjusted, _ := adjust(*rec.ConvertedAmounts.Original, pct, tax)
		taxAdjusted, taxPart := adjust(*rec.TaxableAmounts.Original, pct, tax)
		rec.ConvertedAmounts.Adjusted = &convAdjusted
		rec.TaxableAmounts.Adjusted = &taxAdjusted
		if tax != nil {
			rate := tax.RateInBps
			rec.TaxRateInBps = &rate
			rec.TaxAmount = &taxPart
		} else {
			rec.TaxRateInBps = nil
			rec.TaxAmount = nil
		}
	}

	return rec
}

// adjust reduces a gross amount to its business share and, when a tax
// applies, strips the tax included in it. The returned taxPart is the
// reverse-computed tax: business share minus net base.
func adjust(gross, pct int64, tax *domain.ResolvedTax) (adjusted, taxPart int64) {
	business := divRound(gross*pct, 100)
	if tax == nil {
		return business, 0
	}
	// net = business / (1 + rate/10000), computed as scaled integers so the
	// rounding is exact.
	net := divRound(business*10000, 10000+tax.RateInBps)
	return net, business - net
}

// divRound divides num by den rounding half away from zero. Amounts here are
// non-negative, so this is round-half-up on magnitude with no float drift.
func divRound(num, den int64) int64 {
	return decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), 0).IntPart()
}

func copyAmount(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
