// Package production resolves machining and assembly capacity into the
// quarter's realized output.
package production

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/params"
)

// Capacity is the pair of production ceilings for a quarter.
type Capacity struct {
	Efficiency     float64 `json:"efficiency"`
	MachineHours   float64 `json:"machine_hours"`
	AssemblyHours  float64 `json:"assembly_hours"`
	MachiningUnits float64 `json:"machining_units"`
	AssemblyUnits  float64 `json:"assembly_units"`
}

// Units is the binding ceiling.
func (c Capacity) Units() float64 {
	return math.Min(c.MachiningUnits, c.AssemblyUnits)
}

// MaintenanceFactor scales machine efficiency by contracted maintenance.
func MaintenanceFactor(hoursPerMachine float64) float64 {
	return math.Min(1.1, 0.9+hoursPerMachine/200)
}

// HoursPerWorker is the paid hours per assembly worker after strike losses.
func HoursPerWorker(shift, strikeWeeks int) float64 {
	wh := params.WorkerHoursByShift[params.ShiftIndex(shift)]
	return wh.Total() - float64(strikeWeeks)*wh.Basic/params.StrikeWeeksPerBasicQuarter
}

// mix returns the share of planned units per product, or an equal split
// when nothing is planned.
func mix(d *decision.Decisions) [params.NumProducts]float64 {
	var w [params.NumProducts]float64
	total := 0
	for _, p := range params.Products {
		total += max(0, d.Deliveries.ProductTotal(p))
	}
	for _, p := range params.Products {
		if total == 0 {
			w[p] = 1.0 / params.NumProducts
			continue
		}
		w[p] = float64(max(0, d.Deliveries.ProductTotal(p))) / float64(total)
	}
	return w
}

// ComputeCapacity derives both ceilings. Unit capacity divides hours by
// the plan-weighted hours each unit needs.
func ComputeCapacity(c *company.State, d *decision.Decisions) Capacity {
	shift := params.ShiftIndex(d.ShiftLevel)
	eff := math.Min(1, c.MachineEfficiency*MaintenanceFactor(d.MaintenanceHours))
	machineHours := float64(c.Machines) * params.MachineHoursPerShift[shift] * eff
	assemblyHours := float64(c.AssemblyWorkers) * HoursPerWorker(shift, c.StrikeWeeks) * c.Productivity

	w := mix(d)
	machPerUnit, assyPerUnit := 0.0, 0.0
	for _, p := range params.Products {
		machPerUnit += w[p] * params.MinMachiningTime[p] / 60
		assyPerUnit += w[p] * math.Max(d.AssemblyTime[p], 1) / 60
	}

	return Capacity{
		Efficiency:     eff,
		MachineHours:   machineHours,
		AssemblyHours:  math.Max(0, assemblyHours),
		MachiningUnits: machineHours / machPerUnit,
		AssemblyUnits:  math.Max(0, assemblyHours) / assyPerUnit,
	}
}
