package risk

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// LandslideFactors are the inputs of ScoreLandslide. Nil fields are unknown.
type LandslideFactors struct {
	Slope            *float64 `json:"slope,omitempty"`  // degrees
	Aspect           *float64 `json:"aspect,omitempty"` // degrees clockwise from north
	Rainfall24h      *float64 `json:"rainfall_24h,omitempty"`
	Rainfall72h      *float64 `json:"rainfall_72h,omitempty"`
	Rainfall7d       *float64 `json:"rainfall_7d,omitempty"`
	SoilMoisture     *float64 `json:"soil_moisture,omitempty"` // volumetric fraction
	NDVI             *float64 `json:"ndvi,omitempty"`
	HistoricalEvents *int     `json:"historical_events,omitempty"` // recorded within the search radius
}

var landslideAdvice = map[domain.RiskLevel][]string{
	domain.LevelVeryHigh: {
		"Evacuate slopes and areas below steep terrain",
		"Watch for cracks, tilting trees and sudden changes in stream flow",
		"Avoid travel on mountain roads",
	},
	domain.LevelHigh: {
		"Stay alert during and after heavy rain",
		"Keep drainage around structures clear",
	},
	domain.LevelModerate: {
		"Inspect retaining walls and drainage on slopes",
	},
	domain.LevelLow: {
		"No immediate action needed",
	},
}

// northFacing reports whether an aspect lies within 45° of north.
func northFacing(aspect float64) bool {
	a := math.Mod(aspect, 360)
	if a < 0 {
		a += 360
	}
	return a >= 315 || a <= 45
}

// ScoreLandslide scores landslide susceptibility.
func ScoreLandslide(f LandslideFactors) Result {
	var s scorecard
	scoreSlope(&s, f.Slope, f.Aspect)
	scoreRainfall(&s, f)
	s.add(landslideSoil, f.SoilMoisture)
	s.supplement(landslideVegetation, f.NDVI)

	var events *float64
	if f.HistoricalEvents != nil {
		events = domain.Float(float64(*f.HistoricalEvents))
	}
	s.add(landslideHistory, events)

	return s.finish(domain.HazardLandslide, landslideLevels, landslideAdvice)
}

func scoreSlope(s *scorecard, slope, aspect *float64) {
	t := landslideSlope
	if slope == nil {
		s.record(t.name, t.weight, 0, true)
		return
	}
	b, ok := t.lookup(*slope)
	score := b.score
	if ok && aspect != nil && northFacing(*aspect) {
		score += landslideAspectBonus
	}
	s.record(t.name, t.weight, score, false)
	if ok {
		s.warn(b, *slope)
	}
}

// scoreRainfall takes the worst of the 24h, 72h and 7d windows.
func scoreRainfall(s *scorecard, f LandslideFactors) {
	windows := []struct {
		t table
		v *float64
	}{
		{landslideRain24h, f.Rainfall24h},
		{landslideRain72h, f.Rainfall72h},
		{landslideRain7d, f.Rainfall7d},
	}

	var (
		best     band
		bestV    float64
		hit      bool
		observed bool
	)
	for _, w := range windows {
		if w.v == nil {
			continue
		}
		observed = true
		if b, ok := w.t.lookup(*w.v); ok && (!hit || b.score > best.score) {
			best, bestV, hit = b, *w.v, true
		}
	}

	s.record("rainfall", landslideRain24h.weight, best.score, !observed)
	if hit {
		s.warn(best, bestV)
	}
}
