package engine

import (
	"math"

	"github.com/talgya/topaz-sim/internal/assets"
	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/finance"
	"github.com/talgya/topaz-sim/internal/market"
	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/personnel"
	"github.com/talgya/topaz-sim/internal/production"
	"github.com/talgya/topaz-sim/internal/report"
)

// quarterWork carries one company's intermediate results between the
// operating phase and the close.
type quarterWork struct {
	index int
	c     *company.State
	d     *decision.Decisions
	rep   report.ManagementReport

	delivery        assets.Delivery
	ordersPlaced    int
	capitalReceipts float64
	capitalPayments float64
}

func newQuarterWork(i int, c *company.State, d *decision.Decisions, events []economy.RandomEvent) *quarterWork {
	w := &quarterWork{index: i, c: c, d: d}
	w.rep.Company = c.Name
	w.rep.CompanyIndex = i
	w.rep.Strategy = c.Strategy
	w.rep.Warnings = decision.Validate(d)
	for _, ev := range events {
		if ev.Affects(i) {
			w.rep.Events = append(w.rep.Events, ev)
		}
	}
	return w
}

// operate runs everything that happens before the market opens: lagged
// staff and asset changes, deliveries, product development, new orders,
// personnel decisions and production.
func (s *Simulation) operate(w *quarterWork) {
	c, d, r := w.c, w.d, &w.rep
	q, y := s.Economy.Quarter, s.Economy.Year
	r.Quarter, r.Year = q, y

	c.CaptureOpening()

	personnel.ApplyDismissals(c)
	personnel.Arrive(c)

	installed, balance := assets.InstallMachines(c, q, y)
	r.MachinesInstalled = installed
	w.capitalPayments += balance

	r.Materials.Opening = c.MaterialStock
	w.delivery = assets.DeliverMaterials(c, q, y)
	r.Materials.Delivered = w.delivery.Quantity
	r.Materials.DeliveryCost = w.delivery.Cost

	r.DevOutcomes = developProducts(c, d, q, y, s.rng)
	r.StockWriteOffs = implementImprovements(c, d)

	if _, ok := assets.PlaceMaterialOrder(c, d.MaterialsQuantity, d.MaterialsSupplier, d.MaterialsDeliveries, q, y, s.Economy.MaterialPrice); ok {
		w.ordersPlaced = 1
		r.Materials.OrderPlaced = true
	}
	ordered, deposit := assets.OrderMachines(c, d.MachinesToOrder, q, y, s.Economy.MaterialPrice)
	r.MachinesOrdered = ordered
	w.capitalPayments += deposit

	sold, receipts := assets.SellMachines(c, d.MachinesToSell)
	r.MachinesSold = sold
	w.capitalReceipts += receipts
	vansSold, vanReceipts := assets.SellVehicles(c, d.VansToSell)
	r.VansSold = vansSold
	w.capitalReceipts += vanReceipts
	vansBought, vanCost := assets.BuyVehicles(c, d.VansToBuy)
	r.VansBought = vansBought
	w.capitalPayments += vanCost

	r.Personnel = personnel.Process(c, d, s.Economy.Unemployment, s.rng)
	r.Workforce = personnel.Measure(c, d.ManagementBudget, r.Personnel)
	r.Workforce.Apply(c)

	r.Capacity = production.ComputeCapacity(c, d)
	r.Production = production.Arbitrate(d, r.Capacity, c.MaterialStock)
	c.MaterialStock = math.Max(0, c.MaterialStock-r.Production.MaterialUsed)
	r.Materials.Used = r.Production.MaterialUsed
	r.Materials.Closing = c.MaterialStock
	r.Materials.OnOrder = c.MaterialOnOrder()

	r.Scheduled = d.Deliveries
	r.OpeningStocks = c.Stocks
}

// allocate scores every company's current public profile and shares out
// demand.
func (s *Simulation) allocate(all []*decision.Decisions) []market.Result {
	profiles := make([]market.Profile, len(s.Companies))
	for i, c := range s.Companies {
		profiles[i] = market.NewProfile(c, all[i])
	}
	return market.Allocate(s.Economy, profiles)
}

// settle fills orders from stock and new production, carries part of the
// unmet demand forward, then closes the books and completes the report.
func (s *Simulation) settle(w *quarterWork, demand market.Result) {
	c, d, r := w.c, w.d, &w.rep

	r.Demand = demand.Demand
	r.MarketShare = demand.Share
	for _, p := range params.Products {
		for _, a := range params.Areas {
			orders := int(math.Floor(demand.Demand[p][a]))
			available := c.Stocks[p][a] + r.Production.Good[p][a]
			potential := c.Backlog[p][a] + orders
			sold := min(available, potential)

			r.NewOrders[p][a] = orders
			r.Sales[p][a] = sold
			c.Stocks[p][a] = available - sold
			c.Backlog[p][a] = int(math.Floor(float64(max(0, potential-sold)) * params.BacklogCarryOver))
		}
		r.ServicingUnits[p] = r.Production.Rejects.ProductTotal(p)
	}
	r.Stocks = c.Stocks
	r.Backlog = c.Backlog

	res := finance.Close(c, finance.Inputs{
		Quarter:         s.Economy.Quarter,
		CBRate:          s.Economy.CBRate,
		MaterialPrice:   s.Economy.MaterialPrice,
		Decisions:       d,
		Capacity:        r.Capacity,
		Output:          r.Production,
		Sales:           r.Sales,
		Movements:       r.Personnel,
		MaterialCost:    w.delivery.Cost,
		OrdersPlaced:    w.ordersPlaced,
		WriteOffs:       r.StockWriteOffs,
		CapitalReceipts: w.capitalReceipts,
		CapitalPayments: w.capitalPayments,
	})

	r.ProfitAndLoss = res.ProfitAndLoss
	r.CostOfSalesBreakdown = res.CostOfSales
	r.Overheads = res.Overheads
	r.Transport = res.Transport
	r.BalanceSheet = res.BalanceSheet
	r.CashFlow = res.CashFlow
	r.SharePriceBreakdown = res.SharePrice

	r.Cash = c.Cash
	r.Overdraft = c.Overdraft
	r.Loan = c.UnsecuredLoan
	r.NetWorth = res.BalanceSheet.NetWorth
	r.SharePrice = c.SharePrice
	r.ShiftLevel = params.ShiftIndex(d.ShiftLevel)
	r.MachineEfficiency = c.MachineEfficiency
	r.Machines = c.Machines
	r.Vehicles = c.Vehicles
	r.Salespeople = c.Salespeople
	r.AssemblyWorkers = c.AssemblyWorkers
	r.Machinists = c.Machinists
	r.StarRatings = c.StarRatings
}
