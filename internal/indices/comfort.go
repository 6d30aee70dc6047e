package indices

import "math"

// Heat index categories (NWS).
const (
	HeatNormal         = "Normal"
	HeatCaution        = "Caution"
	HeatExtremeCaution = "Extreme Caution"
	HeatDanger         = "Danger"
	HeatExtremeDanger  = "Extreme Danger"
)

// Wind chill categories.
const (
	ChillNone     = "No Chill Effect"
	ChillLow      = "Low Risk"
	ChillModerate = "Moderate Risk"
	ChillHigh     = "High Risk"
	ChillExtreme  = "Extreme Risk"
)

const (
	windChillMinWindMph = 3.0
	windChillMaxTempF   = 50.0
)

// HeatIndex computes the apparent temperature (°F) from air temperature (°F)
// and relative humidity (%) with the NWS Rothfusz regression.
func HeatIndex(tempF, humidity float64) Value {
	if math.IsNaN(tempF) || math.IsNaN(humidity) {
		return insufficient(0, "heat index needs temperature and humidity")
	}
	rh := clamp(humidity, 0, 100)

	hi := 0.5 * (tempF + 61.0 + (tempF-68.0)*1.2 + rh*0.094)
	if (hi+tempF)/2 >= 80 {
		t, r := tempF, rh
		hi = -42.379 + 2.04901523*t + 10.14333127*r -
			0.22475541*t*r - 0.00683783*t*t - 0.05481717*r*r +
			0.00122874*t*t*r + 0.00085282*t*r*r - 0.00000199*t*t*r*r

		switch {
		case r < 13 && t >= 80 && t <= 112:
			hi -= ((13 - r) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
		case r > 85 && t >= 80 && t <= 87:
			hi += ((r - 85) / 10) * ((87 - t) / 5)
		}
	}

	category := heatCategory(hi)
	return Value{Value: hi, Category: category, Description: describeHeat(category), Status: StatusOK}
}

func heatCategory(hi float64) string {
	switch {
	case hi < 80:
		return HeatNormal
	case hi < 90:
		return HeatCaution
	case hi < 103:
		return HeatExtremeCaution
	case hi < 125:
		return HeatDanger
	default:
		return HeatExtremeDanger
	}
}

func describeHeat(category string) string {
	switch category {
	case HeatCaution:
		return "fatigue possible with prolonged exposure"
	case HeatExtremeCaution:
		return "heat cramps and exhaustion possible"
	case HeatDanger:
		return "heat exhaustion likely, heat stroke possible"
	case HeatExtremeDanger:
		return "heat stroke highly likely"
	default:
		return "no heat stress"
	}
}

// WindChill computes the NWS wind chill temperature (°F) from air temperature
// (°F) and wind speed (mph). Below 3 mph, or above 50°F, there is no chill
// effect and the ambient temperature is returned unchanged.
func WindChill(tempF, windMph float64) Value {
	if math.IsNaN(tempF) || math.IsNaN(windMph) {
		return insufficient(0, "wind chill needs temperature and wind speed")
	}
	if windMph < windChillMinWindMph || tempF > windChillMaxTempF {
		return Value{Value: tempF, Category: ChillNone, Description: "wind does not lower the apparent temperature", Status: StatusOK}
	}

	v := math.Pow(windMph, 0.16)
	wc := 35.74 + 0.6215*tempF - 35.75*v + 0.4275*tempF*v

	category := chillCategory(wc)
	return Value{Value: wc, Category: category, Description: describeChill(category), Status: StatusOK}
}

func chillCategory(wc float64) string {
	switch {
	case wc > 16:
		return ChillLow
	case wc > -15:
		return ChillModerate
	case wc > -35:
		return ChillHigh
	default:
		return ChillExtreme
	}
}

func describeChill(category string) string {
	switch category {
	case ChillModerate:
		return "frostbite possible with prolonged exposure"
	case ChillHigh:
		return "frostbite possible within 30 minutes"
	case ChillExtreme:
		return "frostbite possible within 10 minutes"
	default:
		return "cold but low frostbite risk"
	}
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// MetresPerSecondToMph converts m/s to mph.
func MetresPerSecondToMph(ms float64) float64 { return ms * 2.236936 }
