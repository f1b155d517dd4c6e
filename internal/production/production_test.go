package production

import (
	"math"
	"testing"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/params"
)

func TestCapacityUsesPlanMix(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	d.MaintenanceHours = 20 // factor 1.0
	d.Deliveries[params.Product1][params.South] = 100

	got := ComputeCapacity(c, &d)
	// 10 machines × 576 h, one hour per Product 1 unit.
	if math.Abs(got.MachiningUnits-5760) > 1e-9 {
		t.Errorf("machining units = %v, want 5760", got.MachiningUnits)
	}
	// 40 workers × 576 h at 100 minutes per unit.
	wantAssy := 40 * 576.0 / (100.0 / 60)
	if math.Abs(got.AssemblyUnits-wantAssy) > 1e-9 {
		t.Errorf("assembly units = %v, want %v", got.AssemblyUnits, wantAssy)
	}
}

func TestStrikeWeeksReduceAssemblyHours(t *testing.T) {
	c := company.New("A")
	d := decision.Default()
	base := ComputeCapacity(c, &d).AssemblyHours
	c.StrikeWeeks = 3
	struck := ComputeCapacity(c, &d).AssemblyHours
	want := base - 40*3*420.0/12
	if math.Abs(struck-want) > 1e-9 {
		t.Errorf("assembly hours with strike = %v, want %v", struck, want)
	}
}

func TestArbitrateUnconstrained(t *testing.T) {
	d := decision.Default()
	d.Deliveries[params.Product1][params.South] = 1000
	limit := Capacity{MachiningUnits: 1e6, AssemblyUnits: 1e6}
	out := Arbitrate(&d, limit, 1e9)
	if out.EffectiveRatio != 1 {
		t.Fatalf("effective ratio = %v, want 1", out.EffectiveRatio)
	}
	// Minimum assembly time: 10% rejects.
	if out.Rejects[0][0] != 100 || out.Good[0][0] != 900 {
		t.Errorf("good %d rejects %d, want 900/100", out.Good[0][0], out.Rejects[0][0])
	}
	if out.MaterialUsed != 1000 {
		t.Errorf("material used = %v, want 1000", out.MaterialUsed)
	}
}

func TestArbitrateProportionalRationing(t *testing.T) {
	d := decision.Default()
	d.Deliveries[params.Product1][params.South] = 1000
	d.Deliveries[params.Product2][params.North] = 1000
	limit := Capacity{MachiningUnits: 1000, AssemblyUnits: 5000}
	out := Arbitrate(&d, limit, 1e9)
	if out.CapacityRatio != 0.5 {
		t.Fatalf("capacity ratio = %v, want 0.5", out.CapacityRatio)
	}
	for _, cell := range [][2]int{{0, 0}, {1, 2}} {
		p, a := params.Product(cell[0]), params.Area(cell[1])
		if got := out.Produced(p, a); got != 500 {
			t.Errorf("%s %s produced %d, want 500", p, a, got)
		}
	}
}

func TestArbitrateMaterialShortfall(t *testing.T) {
	d := decision.Default()
	d.Deliveries[params.Product3][params.West] = 1000 // needs 3000 units of material
	limit := Capacity{MachiningUnits: 1e6, AssemblyUnits: 1e6}
	out := Arbitrate(&d, limit, 1500)
	if out.MaterialRatio != 0.5 {
		t.Fatalf("material ratio = %v, want 0.5", out.MaterialRatio)
	}
	if out.MaterialUsed > 1500 {
		t.Errorf("used %v material with 1500 available", out.MaterialUsed)
	}
}

func TestConservationOfPlannedUnits(t *testing.T) {
	d := decision.Default()
	for _, p := range params.Products {
		for _, a := range params.Areas {
			d.Deliveries[p][a] = 137 * (int(p) + 1) * (int(a) + 2)
		}
	}
	d.AssemblyTime = [params.NumProducts]float64{130, 160, 390}
	limit := Capacity{MachiningUnits: 2345, AssemblyUnits: 9000}
	out := Arbitrate(&d, limit, 4000)
	for _, p := range params.Products {
		for _, a := range params.Areas {
			want := int(math.Floor(float64(d.Deliveries[p][a]) * out.EffectiveRatio))
			if got := out.Good[p][a] + out.Rejects[p][a]; got != want {
				t.Errorf("%s %s: good+rejects = %d, want %d", p, a, got, want)
			}
		}
	}
}

func TestRejectRate(t *testing.T) {
	tests := []struct {
		time float64
		want float64
	}{
		{100, 0.1},
		{50, 0.125},
		{200, 0.05},
		{10_000, 0.01},
	}
	for _, tt := range tests {
		if got := RejectRate(tt.time, params.Product1); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RejectRate(%v) = %v, want %v", tt.time, got, tt.want)
		}
	}
}
