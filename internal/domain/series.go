package domain

import "time"

// DateLayout is the canonical calendar-day layout.
const DateLayout = "2006-01-02"

// Parameter identifies one upstream data family.
type Parameter string

const (
	ParamTemperature    Parameter = "temperature"
	ParamTemperatureMax Parameter = "temperature_max"
	ParamTemperatureMin Parameter = "temperature_min"
	ParamPrecipitation  Parameter = "precipitation"
	ParamHumidity       Parameter = "humidity"
	ParamWindSpeed      Parameter = "wind_speed"
	ParamSoilMoisture   Parameter = "soil_moisture"
)

// AllParameters lists every parameter the ingest layer knows how to fetch.
var AllParameters = []Parameter{
	ParamTemperature,
	ParamTemperatureMax,
	ParamTemperatureMin,
	ParamPrecipitation,
	ParamHumidity,
	ParamWindSpeed,
	ParamSoilMoisture,
}

// DataQuality tags a series or result with how complete its inputs were.
type DataQuality string

const (
	QualityOK              DataQuality = "ok"
	QualityPartial         DataQuality = "partial"
	QualityNoData          DataQuality = "no_data"
	QualityUpstreamFailure DataQuality = "upstream_failure"
)

// Point is a single dated value.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is an ordered, sentinel-free sequence of points for one parameter.
type Series struct {
	Parameter Parameter   `json:"parameter"`
	Points    []Point     `json:"points"`
	Quality   DataQuality `json:"quality"`
}

// Empty reports whether the series carries no usable points.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Values returns the point values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Since returns the points dated on or after the given canonical date.
func Since(points []Point, date string) []Point {
	for i, p := range points {
		if p.Date >= date {
			return points[i:]
		}
	}
	return nil
}

// Between returns the points dated within [from, to], both canonical dates.
func Between(points []Point, from, to string) []Point {
	var out []Point
	for _, p := range points {
		if p.Date < from {
			continue
		}
		if p.Date > to {
			break
		}
		out = append(out, p)
	}
	return out
}

// ParseDate parses a canonical date. The zero time is returned for malformed input.
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate renders t as a canonical date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// NextDay returns the canonical date following s, or "" if s is malformed.
func NextDay(s string) string {
	t := ParseDate(s)
	if t.IsZero() {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, 1))
}

// MonthKey returns the "YYYY-MM" bucket of a canonical date.
func MonthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}
