package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// ConditionFromCode maps a WMO weather code as reported by Open-Meteo.
func ConditionFromCode(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}

var conditionText = map[Condition]string{
	ConditionClear:  "Clear sky",
	ConditionCloudy: "Cloudy",
	ConditionFog:    "Fog",
	ConditionRain:   "Rain",
	ConditionSnow:   "Snow",
	ConditionStorm:  "Thunderstorm",
}

// Text returns a human label for the condition, empty for unknown.
func (c Condition) Text() string {
	return conditionText[c]
}
