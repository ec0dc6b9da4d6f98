package dataset

import (
	"math"
	"math/rand"
	"strconv"

	"smesales/internal/model"
)

var (
	businessBase = map[string]float64{
		"Retail": 600, "Restaurant": 900, "Salon": 300, "Electronics": 1500,
		"Pharmacy": 800, "Supermarket": 2500, "Fashion": 700,
	}
	locationFactor = map[string]float64{
		"Market": 1.0, "Mall": 1.6, "Street": 0.8, "Estate": 0.9, "Online": 1.2,
	}
	stateFactor = map[string]float64{
		"Lagos": 1.5, "Abuja": 1.4, "Kano": 1.0, "Port Harcourt": 1.25, "Ibadan": 0.95,
		"Enugu": 0.95, "Rivers": 1.2, "Oyo": 0.9, "Kaduna": 0.9, "Delta": 1.05,
	}
)

// Synthesize generates n plausible SME sales rows for local runs and tests.
// The same seed always yields the same frame.
func Synthesize(n int, seed int64) *Frame {
	rng := rand.New(rand.NewSource(seed))
	frame := &Frame{
		Source: "synthetic",
		Header: []string{
			model.ColBusinessType, model.ColLocationType, model.ColState,
			model.ColNumEmployees, model.ColMarketingSpend, model.ColInventoryValue,
			model.ColMonthlySales,
		},
	}

	for i := 0; i < n; i++ {
		biz := model.BusinessTypes[rng.Intn(len(model.BusinessTypes))]
		loc := model.LocationTypes[rng.Intn(len(model.LocationTypes))]
		state := model.States[rng.Intn(len(model.States))]
		employees := 1 + rng.Intn(20)
		marketing := 5000 + 1000*rng.Intn(196)
		inventory := 100000 + 10000*rng.Intn(491)

		sales := SalesFormula(biz, loc, state, float64(employees), float64(marketing), float64(inventory))
		sales *= 1 + 0.08*rng.NormFloat64()
		sales = math.Max(50, math.Round(sales*10)/10)

		frame.Rows = append(frame.Rows, []string{
			biz, loc, state,
			strconv.Itoa(employees), strconv.Itoa(marketing), strconv.Itoa(inventory),
			strconv.FormatFloat(sales, 'f', 1, 64),
		})
	}
	return frame
}

// SalesFormula is the noise-free monthly sales (thousands of naira) behind
// Synthesize.
func SalesFormula(biz, loc, state string, employees, marketing, inventory float64) float64 {
	base := businessBase[biz] + 60*employees + 0.004*marketing + 0.0004*inventory
	return base * locationFactor[loc] * stateFactor[state]
}
