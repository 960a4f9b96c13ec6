// Package geo holds the static lookup tables used by the map frontend:
// station coordinates, compass names for wind directions, and color buckets
// for temperature visualization.
package geo

import "strconv"

// Coordinates locates one synoptic station.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

var stationCoordinates = map[string]Coordinates{
	"12295": {Lat: 53.1325, Lon: 23.1688, Name: "Białystok"},
	"12600": {Lat: 49.8224, Lon: 19.0444, Name: "Bielsko Biała"},
	"12235": {Lat: 53.6983, Lon: 17.5583, Name: "Chojnice"},
	"12550": {Lat: 50.8118, Lon: 19.1203, Name: "Częstochowa"},
	"12160": {Lat: 54.1522, Lon: 19.4044, Name: "Elbląg"},
	"12375": {Lat: 52.2297, Lon: 21.0122, Name: "Warszawa"},
	"12566": {Lat: 50.0647, Lon: 19.9450, Name: "Kraków"},
	"12115": {Lat: 54.3520, Lon: 18.6466, Name: "Gdańsk"},
	"12250": {Lat: 52.4064, Lon: 16.9252, Name: "Poznań"},
	"12424": {Lat: 51.7520, Lon: 19.4660, Name: "Łódź"},
	"12560": {Lat: 50.2649, Lon: 19.0238, Name: "Katowice"},
	"12465": {Lat: 51.2465, Lon: 22.5684, Name: "Lublin"},
	"12400": {Lat: 51.1079, Lon: 17.0385, Name: "Wrocław"},
	"12185": {Lat: 54.7158, Lon: 20.5060, Name: "Olsztyn"},
	"12595": {Lat: 49.9747, Lon: 20.4568, Name: "Nowy Sącz"},
	"12210": {Lat: 53.7784, Lon: 15.7201, Name: "Szczecin"},
	"12495": {Lat: 50.8551, Lon: 20.6289, Name: "Kielce"},
	"12125": {Lat: 54.4773, Lon: 17.0322, Name: "Słupsk"},
}

// windDirections maps degree anchors to compass names. Lookup is a
// nearest-key scan; with 37 entries a linear pass is plenty.
var windDirections = []struct {
	Degrees int
	Name    string
}{
	{0, "N"}, {10, "N"}, {20, "NNE"}, {30, "NNE"}, {40, "NE"},
	{50, "NE"}, {60, "ENE"}, {70, "ENE"}, {80, "E"}, {90, "E"},
	{100, "E"}, {110, "ESE"}, {120, "ESE"}, {130, "SE"}, {140, "SE"},
	{150, "SSE"}, {160, "SSE"}, {170, "S"}, {180, "S"}, {190, "S"},
	{200, "SSW"}, {210, "SSW"}, {220, "SW"}, {230, "SW"}, {240, "WSW"},
	{250, "WSW"}, {260, "W"}, {270, "W"}, {280, "W"}, {290, "WNW"},
	{300, "WNW"}, {310, "NW"}, {320, "NW"}, {330, "NNW"}, {340, "NNW"},
	{350, "N"}, {360, "N"},
}

var temperatureColors = []struct {
	Min, Max float64
	Color    string
}{
	{-30, -20, "#0D47A1"}, // extreme cold
	{-20, -10, "#1976D2"}, // very cold
	{-10, 0, "#42A5F5"},   // cold
	{0, 10, "#81C784"},    // cool
	{10, 20, "#FFD54F"},   // mild
	{20, 30, "#FF8A65"},   // warm
	{30, 40, "#F44336"},   // hot
	{40, 50, "#B71C1C"},   // extreme hot
}

const defaultColor = "#757575"

// StationCoordinates returns the coordinates for a station, falling back to
// the geographic center of Poland for unknown IDs.
func StationCoordinates(stationID string) Coordinates {
	if c, ok := stationCoordinates[stationID]; ok {
		return c
	}
	return Coordinates{Lat: 52.0, Lon: 20.0}
}

// AllStations returns the full coordinate table keyed by station ID.
func AllStations() map[string]Coordinates {
	out := make(map[string]Coordinates, len(stationCoordinates))
	for id, c := range stationCoordinates {
		out[id] = c
	}
	return out
}

// WindDirectionName returns the compass name for a wind direction given in
// degrees (as reported on the wire, a decimal string). Unparseable input
// yields "N/A".
func WindDirectionName(degrees string) string {
	f, err := strconv.ParseFloat(degrees, 64)
	if err != nil {
		return "N/A"
	}
	deg := int(f)

	best := windDirections[0]
	bestDist := abs(best.Degrees - deg)
	for _, wd := range windDirections[1:] {
		if d := abs(wd.Degrees - deg); d < bestDist {
			best, bestDist = wd, d
		}
	}
	return best.Name
}

// TemperatureColor returns the visualization color for a temperature in
// degrees Celsius. Buckets are half-open [min, max).
func TemperatureColor(t float64) string {
	for _, b := range temperatureColors {
		if t >= b.Min && t < b.Max {
			return b.Color
		}
	}
	return defaultColor
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
