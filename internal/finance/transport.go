package finance

import (
	"math"

	"github.com/talgya/topaz-sim/internal/params"
	"github.com/talgya/topaz-sim/internal/report"
)

// Transport packs each area's deliveries into vehicle loads and prices the
// vehicle-days needed. Own vans cover what they can; the rest is hired.
func Transport(delivered params.Grid[int], vehicles int) report.Transport {
	var t report.Transport
	vehicles = max(0, vehicles)
	t.FleetFixed = float64(vehicles) * params.FleetFixedCostPerVehicle

	for _, a := range params.Areas {
		slots := 0.0
		for _, p := range params.Products {
			slots += float64(max(0, delivered[p][a])) * params.VehicleSlots / params.VehicleCapacity[p]
		}
		if slots == 0 {
			continue
		}
		t.Trips[a] = int(math.Ceil(slots / params.VehicleSlots))
		t.VehicleDays += float64(t.Trips[a]) * params.JourneyTimeDays[a]
	}

	t.OwnDays = math.Min(float64(vehicles)*params.MaxVehicleDaysPerQuarter, t.VehicleDays)
	t.HiredDays = t.VehicleDays - t.OwnDays
	t.OwnRunning = t.OwnDays * params.OwnVehicleRunningCostPerDay
	t.HiredRunning = t.HiredDays * params.HiredVehicleCostPerDay
	t.Total = t.FleetFixed + t.OwnRunning + t.HiredRunning
	return t
}
