package assets

import (
	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/params"
)

// OrderMachines places a machine order capped by creditworthiness and
// returns the number ordered and the deposit due now.
func OrderMachines(c *company.State, requested, quarter, year int, materialPrice float64) (int, float64) {
	if requested <= 0 {
		return 0, 0
	}
	affordable := int(c.Creditworthiness(materialPrice) / params.MachineDeposit)
	n := min(requested, affordable)
	if n <= 0 {
		return 0, 0
	}

	iq, iy := params.NextQuarter(quarter, year, params.MachineInstallLagQuarters)
	c.MachineOrders = append(c.MachineOrders, company.MachineOrder{
		Quantity:       n,
		OrderQuarter:   quarter,
		OrderYear:      year,
		InstallQuarter: iq,
		InstallYear:    iy,
	})
	return n, float64(n) * params.MachineDeposit
}

// InstallMachines brings due orders into service and returns the number
// installed and the balance payable on them.
func InstallMachines(c *company.State, quarter, year int) (int, float64) {
	installed := 0
	kept := c.MachineOrders[:0]
	for _, mo := range c.MachineOrders {
		if mo.InstallQuarter != quarter || mo.InstallYear != year {
			kept = append(kept, mo)
			continue
		}
		for range mo.Quantity {
			c.MachineAges = append(c.MachineAges, 0)
			c.MachineValues = append(c.MachineValues, params.MachineCost)
		}
		installed += mo.Quantity
	}
	c.MachineOrders = kept
	c.Machines = len(c.MachineValues)
	return installed, float64(installed) * (params.MachineCost - params.MachineDeposit)
}

// SellMachines disposes of the oldest machines at book value.
func SellMachines(c *company.State, n int) (int, float64) {
	n = min(max(n, 0), len(c.MachineValues))
	receipts := 0.0
	for _, v := range c.MachineValues[:n] {
		receipts += v
	}
	c.MachineValues = c.MachineValues[n:]
	c.MachineAges = c.MachineAges[n:]
	c.Machines = len(c.MachineValues)
	return n, receipts
}

// SellVehicles disposes of the oldest vans at book value.
func SellVehicles(c *company.State, n int) (int, float64) {
	n = min(max(n, 0), len(c.VehicleAges))
	receipts := 0.0
	for _, age := range c.VehicleAges[:n] {
		receipts += company.VehicleBookValue(age)
	}
	c.VehicleAges = c.VehicleAges[n:]
	c.Vehicles = len(c.VehicleAges)
	return n, receipts
}

// BuyVehicles adds new vans and returns the purchase cost.
func BuyVehicles(c *company.State, n int) (int, float64) {
	n = max(n, 0)
	for range n {
		c.VehicleAges = append(c.VehicleAges, 0)
	}
	c.Vehicles = len(c.VehicleAges)
	return n, float64(n) * params.VehicleCost
}

// Depreciate writes down machines and vehicles by one quarter and ages them.
func Depreciate(c *company.State) (machines, vehicles float64) {
	for i, v := range c.MachineValues {
		dep := v * params.MachineDepreciationRate
		c.MachineValues[i] = v - dep
		c.MachineAges[i]++
		machines += dep
	}
	for i, age := range c.VehicleAges {
		vehicles += company.VehicleBookValue(age) * params.VehicleDepreciationRate
		c.VehicleAges[i] = age + 1
	}
	return machines, vehicles
}
