// Package domain models daily climate observations and the risk signals
// derived from them.
//
// # Data Source
//
// Daily point series come from the NASA POWER daily API
// (https://power.larc.nasa.gov/docs/services/api/temporal/daily/). Each
// parameter is fetched independently and delivered as a map from compact
// date ("20240426") to value. Terrain comes from the Open-Meteo elevation API
// and historical hazard occurrences from a local JSON catalog.
//
// # Data Conventions
//
// Dates:
//
//	Calendar days in canonical "YYYY-MM-DD" form. Upstream compact "YYYYMMDD"
//	keys are normalized on ingestion. Because the form is fixed-width,
//	lexicographic order equals chronological order and the first seven
//	characters are the month key ("2024-04").
//
// Units:
//
//	Temperature: degrees Celsius (heat index and wind chill take Fahrenheit).
//	Precipitation: millimetres per day.
//	Humidity: relative humidity in percent.
//	Wind speed: metres per second at 2 m.
//	Soil moisture: root-zone wetness fraction, 0–1.
//
// Missing values:
//
//	POWER encodes missing readings as -999. Any temperature-like reading at or
//	below -100, any negative precipitation, humidity outside 0–100, negative
//	wind and soil moisture outside 0–1 are sentinels and are dropped before a
//	value becomes a [Point]. Nil fields on [DailyObservation] are gaps.
//
// Data quality:
//
//	Every [Series] carries a [DataQuality] tag so consumers can tell "no data
//	for this location/period" ([QualityNoData]) from "transient failure, retry"
//	([QualityUpstreamFailure]). Calculators only ever see the points; an empty
//	series is the single "no series for this parameter" signal.
//
// # Risk Levels
//
// Scores are in [0,1]. Each hazard maps scores to its own ordered level set:
//
//	Flood:     <0.25 low | <0.5 moderate | <0.75 high | ≥0.75 extreme
//	Drought:   <0.1 none | <0.25 mild | <0.4 moderate | <0.6 severe | ≥0.6 extreme
//	Landslide: <0.3 low | <0.5 moderate | <0.7 high | ≥0.7 very_high
//
// Monthly drought records use a coarser category set
// (<0.25 low | <0.5 medium | <0.75 high | ≥0.75 extreme).
//
// # ID Generation
//
// Detected event IDs are name-based (SHA-1, version 5) UUIDs of
// type|start|end, so running detection twice over the same series yields
// identical events. See [EventID].
package domain
