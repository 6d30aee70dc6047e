package domain

import "sort"

// DailyObservation is one calendar day of readings at a location.
// Nil fields are gaps.
type DailyObservation struct {
	Date          string   `json:"date"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Precipitation *float64 `json:"precipitation,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	SoilMoisture  *float64 `json:"soil_moisture,omitempty"`
}

// Location is a WGS-84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside the WGS-84 range.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// Terrain describes the ground at a location. Aspect is nil on flat ground.
type Terrain struct {
	Elevation float64  `json:"elevation"`
	Slope     float64  `json:"slope"`
	Aspect    *float64 `json:"aspect,omitempty"`
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 { return &v }

// MergeObservations joins per-parameter series into daily observations
// ordered by date. Days present in any series appear once.
func MergeObservations(series map[Parameter]Series) []DailyObservation {
	byDate := make(map[string]*DailyObservation)
	for param, s := range series {
		for _, p := range s.Points {
			obs, ok := byDate[p.Date]
			if !ok {
				obs = &DailyObservation{Date: p.Date}
				byDate[p.Date] = obs
			}
			v := p.Value
			switch param {
			case ParamTemperature:
				obs.Temperature = &v
			case ParamPrecipitation:
				obs.Precipitation = &v
			case ParamHumidity:
				obs.Humidity = &v
			case ParamWindSpeed:
				obs.WindSpeed = &v
			case ParamSoilMoisture:
				obs.SoilMoisture = &v
			}
		}
	}

	out := make([]DailyObservation, 0, len(byDate))
	for _, obs := range byDate {
		out = append(out, *obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Extract pulls one parameter back out of observations as ordered points,
// skipping gaps.
func Extract(observations []DailyObservation, param Parameter) []Point {
	out := make([]Point, 0, len(observations))
	for _, obs := range observations {
		var v *float64
		switch param {
		case ParamTemperature:
			v = obs.Temperature
		case ParamPrecipitation:
			v = obs.Precipitation
		case ParamHumidity:
			v = obs.Humidity
		case ParamWindSpeed:
			v = obs.WindSpeed
		case ParamSoilMoisture:
			v = obs.SoilMoisture
		}
		if v == nil {
			continue
		}
		out = append(out, Point{Date: obs.Date, Value: *v})
	}
	return out
}
