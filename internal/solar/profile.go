package solar

import "building_twin/internal/model"

// Profile is the hour-of-day generation shape of a simulated run.
type Profile struct {
	// HourlyKW is the mean generation for each hour [0-23].
	HourlyKW [24]float64 `json:"hourly_kw"`
	// HourlyFactor is HourlyKW normalized to peak = 1.0.
	HourlyFactor [24]float64 `json:"hourly_factor"`
	// PeakHour is the hour with the highest mean generation.
	PeakHour int `json:"peak_hour"`
}

// BuildProfile averages solar generation per hour-of-day across records.
func BuildProfile(records []model.BalanceRecord) Profile {
	var hourSum [24]float64
	var hourCount [24]int
	for _, r := range records {
		h := r.Timestamp.Hour()
		hourSum[h] += r.SolarKW
		hourCount[h]++
	}

	var p Profile
	var maxAvg float64
	for h := 0; h < 24; h++ {
		if hourCount[h] == 0 {
			continue
		}
		avg := hourSum[h] / float64(hourCount[h])
		p.HourlyKW[h] = avg
		if avg > maxAvg {
			maxAvg = avg
			p.PeakHour = h
		}
	}

	if maxAvg > 0 {
		for h := 0; h < 24; h++ {
			p.HourlyFactor[h] = p.HourlyKW[h] / maxAvg
		}
	}
	return p
}
