package finance

import (
	"math"

	"github.com/talgya/topaz-sim/internal/params"
)

// Rates are annual percentage rates derived from the central bank rate.
type Rates struct {
	Deposit   float64
	Overdraft float64
	Loan      float64
}

// RatesFor applies the fixed spreads. Deposits never earn a negative rate.
func RatesFor(cbRate float64) Rates {
	return Rates{
		Deposit:   math.Max(0, cbRate+params.InterestDepositSpread),
		Overdraft: cbRate + params.InterestOverdraftSpread,
		Loan:      cbRate + params.InterestLoanSpread,
	}
}

// Position is a company's cash and borrowing at a point in time.
type Position struct {
	Cash      float64
	Overdraft float64
	Loan      float64
}

// Interest charges a quarter's interest on the average of the opening and
// closing positions.
func Interest(r Rates, opening, closing Position) (received, paid float64) {
	avgCash := (opening.Cash + closing.Cash) / 2
	avgOverdraft := (opening.Overdraft + closing.Overdraft) / 2
	avgLoan := (opening.Loan + closing.Loan) / 2

	received = math.Max(0, avgCash) * r.Deposit / 100 / 4
	paid = (avgOverdraft*r.Overdraft/100 + avgLoan*r.Loan/100) / 4
	return received, paid
}

// Funding records how a cash shortfall was covered.
type Funding struct {
	Position
	OverdraftDrawn float64
	LoanDrawn      float64
}

// Settle brings a negative cash balance back to zero, drawing first on the
// overdraft headroom under limit and then on an unsecured loan.
func Settle(p Position, limit float64) Funding {
	f := Funding{Position: p}
	if p.Cash >= 0 {
		return f
	}
	needed := -p.Cash
	f.Cash = 0
	f.OverdraftDrawn = math.Min(needed, math.Max(0, limit-p.Overdraft))
	f.Overdraft += f.OverdraftDrawn
	f.LoanDrawn = needed - f.OverdraftDrawn
	f.Loan += f.LoanDrawn
	return f
}

// QuarterTax accrues profit toward the tax year. Only the fourth quarter
// assesses tax, charging the year's liability less what was assessed
// before; the accumulator then resets.
func QuarterTax(quarter int, accumulated, priorLiability, profitBeforeTax float64) (tax, newAccumulated, newLiability float64) {
	accumulated += profitBeforeTax
	if quarter != 4 {
		return 0, accumulated, priorLiability
	}
	yearly := math.Max(0, accumulated*params.TaxRate)
	return yearly - priorLiability, 0, yearly
}
