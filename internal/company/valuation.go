package company

import (
	"math"

	"github.com/talgya/topaz-sim/internal/params"
)

// VehicleBookValue is the written-down value of a van of the given age.
func VehicleBookValue(ageQuarters int) float64 {
	return params.VehicleCost * math.Pow(1-params.VehicleDepreciationRate, float64(ageQuarters))
}

// MachineValue is the book value of installed machines.
func (c *State) MachineValue() float64 {
	total := 0.0
	for _, v := range c.MachineValues {
		total += v
	}
	return total
}

// VehicleValue is the book value of the fleet.
func (c *State) VehicleValue() float64 {
	total := 0.0
	for _, age := range c.VehicleAges {
		total += VehicleBookValue(age)
	}
	return total
}

// ProductStockValue values finished goods at the standard unit valuation.
func (c *State) ProductStockValue() float64 {
	total := 0.0
	for _, p := range params.Products {
		total += float64(c.Stocks.ProductTotal(p)) * params.ProductStockValuation[p]
	}
	return total
}

// MaterialStockValue values raw material at half the current index price.
func (c *State) MaterialStockValue(materialPrice float64) float64 {
	return c.MaterialStock * (materialPrice / 1000) * 0.5
}

// NetWorth is assets less liabilities.
func (c *State) NetWorth(materialPrice float64) float64 {
	assets := c.Cash +
		c.PropertyValue +
		c.MachineValue() +
		c.VehicleValue() +
		c.ProductStockValue() +
		c.MaterialStockValue(materialPrice) +
		c.Debtors
	liabilities := c.Overdraft + c.UnsecuredLoan + c.TaxLiability + c.Creditors
	return assets - liabilities
}

// OverdraftLimit is the bank's lending limit against the company's assets.
func (c *State) OverdraftLimit(materialPrice float64) float64 {
	limit := c.Cash +
		c.ProductStockValue() +
		0.5*(c.MachineValue()+c.VehicleValue()+c.MaterialStockValue(materialPrice)+c.Debtors) +
		0.25*c.PropertyValue -
		(c.TaxLiability + c.Creditors)
	return math.Max(0, limit)
}

// MachineCommitments is the balance still owed on machines not yet installed.
func (c *State) MachineCommitments() float64 {
	return float64(c.MachinesOnOrder()) * (params.MachineCost - params.MachineDeposit)
}

// Creditworthiness is the unused borrowing capacity after existing debt and
// outstanding machine balances.
func (c *State) Creditworthiness(materialPrice float64) float64 {
	return math.Max(0, c.OverdraftLimit(materialPrice)-c.Overdraft-c.UnsecuredLoan-c.MachineCommitments())
}
