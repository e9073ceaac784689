package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weather-panel/internal/panel"
	"weather-panel/internal/weather"
)

const (
	Title          = "Weather Forecast"
	LoadingMessage = "Loading weather data..."
	missing        = "--"
	dateLayout     = "Monday, January 2, 2006"
)

// Results is the display-ready content of the results area.
type Results struct {
	Loading     bool   `json:"loading"`
	Ready       bool   `json:"ready"`
	Notice      string `json:"notice,omitempty"`
	Location    string `json:"location,omitempty"`
	Name        string `json:"name,omitempty"`
	Country     string `json:"country,omitempty"`
	Date        string `json:"date,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Glyph       string `json:"glyph,omitempty"`
	Wind        string `json:"wind,omitempty"`
	Humidity    string `json:"humidity,omitempty"`
	FeelsLike   string `json:"feels_like,omitempty"`
	Pressure    string `json:"pressure,omitempty"`
}

// Page is everything a renderer needs for one frame of the panel.
type Page struct {
	Title   string  `json:"title"`
	Theme   string  `json:"theme"`
	Unit    string  `json:"unit"`
	Query   string  `json:"query"`
	Results Results `json:"results"`
}

func Present(v panel.View) Page {
	return Page{
		Title:   Title,
		Theme:   Theme(v.Dark),
		Unit:    string(v.Unit),
		Query:   v.Query,
		Results: PresentResults(v),
	}
}

func Theme(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

// PresentResults applies the results-area rules: loading hides weather
// content, and no snapshot means an empty area apart from any notice.
func PresentResults(v panel.View) Results {
	r := Results{
		Loading: v.Loading,
		Notice:  v.Notice.Message(),
	}
	if v.Loading || v.Snapshot == nil {
		return r
	}

	s := v.Snapshot
	icon := s.Symbol()
	r.Ready = true
	r.Name = s.Name
	r.Country = s.Country
	r.Location = Location(s.Name, s.Country)
	r.Date = Date(v.Now)
	r.Temperature = Temperature(s.Temp, s.Unit)
	r.Description = s.Description
	r.Icon = string(icon)
	r.Glyph = icon.Glyph()
	r.Wind = Speed(s.WindSpeed, s.Unit)
	r.Humidity = Percent(s.Humidity)
	r.FeelsLike = Temperature(s.FeelsLike, s.Unit)
	r.Pressure = Pressure(s.Pressure)
	return r
}

func Location(name, country string) string {
	switch {
	case name == "" && country == "":
		return missing
	case country == "":
		return name
	case name == "":
		return country
	}
	return name + ", " + country
}

// Date formats t as "Sunday, October 18, 2026" in t's own location.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Degrees rounds to the nearest whole degree, halves up (-2.5 → -2°).
func Degrees(v float64) string {
	return fmt.Sprintf("%d°", int64(math.Floor(v+0.5)))
}

func Temperature(v *float64, unit weather.Unit) string {
	if v == nil {
		return missing
	}
	return Degrees(*v) + unit.TemperatureSuffix()
}

func Speed(v *float64, unit weather.Unit) string {
	if v == nil {
		return missing
	}
	return number(*v) + " " + unit.SpeedSuffix()
}

func Percent(v *float64) string {
	if v == nil {
		return missing
	}
	return number(*v) + "%"
}

func Pressure(v *float64) string {
	if v == nil {
		return missing
	}
	return number(*v) + " hPa"
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Text renders the page as plain text lines for terminals and the CLI.
func Text(p Page) string {
	var b strings.Builder
	r := p.Results

	switch {
	case r.Loading:
		b.WriteString(LoadingMessage + "\n")
	case r.Ready:
		fmt.Fprintf(&b, "%s\n%s\n\n", r.Location, r.Date)
		fmt.Fprintf(&b, "  %s  %s  %s\n\n", r.Glyph, r.Temperature, r.Description)
		fmt.Fprintf(&b, "  Wind Speed  %s\n", r.Wind)
		fmt.Fprintf(&b, "  Humidity    %s\n", r.Humidity)
		fmt.Fprintf(&b, "  Feels Like  %s\n", r.FeelsLike)
		fmt.Fprintf(&b, "  Pressure    %s\n", r.Pressure)
	}
	if r.Notice != "" && !r.Loading {
		if r.Ready {
			b.WriteString("\n")
		}
		b.WriteString(r.Notice + "\n")
	}
	return b.String()
}
