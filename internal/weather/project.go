package weather

import (
	"fmt"
	"time"
)

const (
	// CategoryLayout formats series dates the way en-US toLocaleDateString does.
	CategoryLayout = "1/2/2006"
	// ClockLayout formats sunrise and sunset the way en-US toLocaleTimeString does.
	ClockLayout = "3:04:05 PM"

	ForecastTitle = "7-Day Weather Forecast"
)

// Open-Meteo reports local times without a zone when timezone=auto.
var localTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339}

// ProjectCurrent extracts the current reading and pairs it with the resolved location.
func ProjectCurrent(raw CurrentResponse, coord Coordinate, label string) (CurrentSnapshot, error) {
	cw := raw.CurrentWeather
	if cw == nil {
		return CurrentSnapshot{}, missingField("current_weather")
	}
	if cw.Temperature == nil {
		return CurrentSnapshot{}, missingField("current_weather.temperature")
	}
	if cw.WindSpeed == nil {
		return CurrentSnapshot{}, missingField("current_weather.windspeed")
	}
	if cw.WindDirection == nil {
		return CurrentSnapshot{}, missingField("current_weather.winddirection")
	}

	snap := CurrentSnapshot{
		Label:         label,
		Coordinate:    coord,
		Temperature:   *cw.Temperature,
		WindSpeed:     *cw.WindSpeed,
		WindDirection: *cw.WindDirection,
		Time:          cw.Time,
	}
	if cw.WeatherCode != nil {
		code := *cw.WeatherCode
		snap.WeatherCode = &code
		snap.Description = ConditionFromCode(code).Text()
	}
	return snap, nil
}

// ProjectForecast maps a 7-day forecast response to chart and table input.
func ProjectForecast(raw DailyResponse) (DailySeries, error) {
	d, err := dailyBlock(raw)
	if err != nil {
		return DailySeries{}, err
	}

	series, err := newSeries(d.Time)
	if err != nil {
		return DailySeries{}, err
	}
	series.Title = ForecastTitle

	if series.TemperatureMax, err = metric("daily.temperature_2m_max", d.TemperatureMax, series.Len()); err != nil {
		return DailySeries{}, err
	}
	if series.TemperatureMin, err = metric("daily.temperature_2m_min", d.TemperatureMin, series.Len()); err != nil {
		return DailySeries{}, err
	}
	if series.UVIndexMax, err = metric("daily.uv_index_max", d.UVIndexMax, series.Len()); err != nil {
		return DailySeries{}, err
	}

	// Sunrise and sunset feed the table only; tolerate their absence.
	if d.Sunrise != nil {
		if series.Sunrise, err = clockTimes("daily.sunrise", d.Sunrise, series.Len()); err != nil {
			return DailySeries{}, err
		}
	}
	if d.Sunset != nil {
		if series.Sunset, err = clockTimes("daily.sunset", d.Sunset, series.Len()); err != nil {
			return DailySeries{}, err
		}
	}

	return series, nil
}

// ProjectHistorical maps an archive response to chart and table input.
func ProjectHistorical(raw DailyResponse) (DailySeries, error) {
	d, err := dailyBlock(raw)
	if err != nil {
		return DailySeries{}, err
	}

	series, err := newSeries(d.Time)
	if err != nil {
		return DailySeries{}, err
	}
	series.Title = HistoricalTitle(raw.Range)

	n := series.Len()
	if series.TemperatureMax, err = metric("daily.temperature_2m_max", d.TemperatureMax, n); err != nil {
		return DailySeries{}, err
	}
	if series.TemperatureMin, err = metric("daily.temperature_2m_min", d.TemperatureMin, n); err != nil {
		return DailySeries{}, err
	}
	if series.TemperatureMean, err = metric("daily.temperature_2m_mean", d.TemperatureMean, n); err != nil {
		return DailySeries{}, err
	}
	if series.PrecipitationSum, err = metric("daily.precipitation_sum", d.PrecipitationSum, n); err != nil {
		return DailySeries{}, err
	}
	if series.Sunrise, err = clockTimes("daily.sunrise", d.Sunrise, n); err != nil {
		return DailySeries{}, err
	}
	if series.Sunset, err = clockTimes("daily.sunset", d.Sunset, n); err != nil {
		return DailySeries{}, err
	}

	return series, nil
}

// HistoricalTitle is the chart and table caption for a historical range.
func HistoricalTitle(r DateRange) string {
	if r.Start.IsZero() || r.End.IsZero() {
		return "Historical Weather Data"
	}
	return fmt.Sprintf("Historical Weather Data from %s to %s", r.StartDate(), r.EndDate())
}

func dailyBlock(raw DailyResponse) (*DailyBlock, error) {
	if raw.Daily == nil {
		return nil, missingField("daily")
	}
	if raw.Daily.Time == nil {
		return nil, missingField("daily.time")
	}
	return raw.Daily, nil
}

func newSeries(dates []string) (DailySeries, error) {
	categories := make([]string, len(dates))
	for i, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return DailySeries{}, &MalformedResponseError{
				Field:  fmt.Sprintf("daily.time[%d]", i),
				Reason: fmt.Sprintf("unparsable date %q", d),
			}
		}
		categories[i] = t.Format(CategoryLayout)
	}

	out := make([]string, len(dates))
	copy(out, dates)
	return DailySeries{Dates: out, Categories: categories}, nil
}

func metric(field string, values []*float64, n int) ([]*float64, error) {
	if values == nil {
		return nil, missingField(field)
	}
	if len(values) != n {
		return nil, misaligned(field, len(values), n)
	}
	out := make([]*float64, n)
	copy(out, values)
	return out, nil
}

func clockTimes(field string, values []string, n int) ([]string, error) {
	if values == nil {
		return nil, missingField(field)
	}
	if len(values) != n {
		return nil, misaligned(field, len(values), n)
	}

	out := make([]string, n)
	for i, v := range values {
		t, ok := parseLocalTime(v)
		if !ok {
			return nil, &MalformedResponseError{
				Field:  fmt.Sprintf("%s[%d]", field, i),
				Reason: fmt.Sprintf("unparsable time %q", v),
			}
		}
		out[i] = t.Format(ClockLayout)
	}
	return out, nil
}

func parseLocalTime(v string) (time.Time, bool) {
	for _, layout := range localTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func misaligned(field string, got, want int) error {
	return &MalformedResponseError{
		Field:  field,
		Reason: fmt.Sprintf("has %d entries, daily.time has %d", got, want),
	}
}
