package builtin

import "math"

// projection converts between projected coordinates and geographic
// longitude/latitude in degrees on the definition's frame. Outside the area
// where an approximation is valid both results are +Inf.
type projection interface {
	toGeographic(x, y float64) (lon, lat float64)
	fromGeographic(lon, lat float64) (x, y float64)
	name() string
	methodCode() string
}

var inf = math.Inf(1)

const (
	earthCircumference = 40075016.685578488
	originShift        = earthCircumference / 2.0
	maxMercatorLat     = 85.0511287798066
)

type webMercator struct{}

func (webMercator) name() string       { return "Popular Visualisation Pseudo-Mercator" }
func (webMercator) methodCode() string { return "1024" }

func (webMercator) toGeographic(x, y float64) (lon, lat float64) {
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return inf, inf
	}
	lon = (x / originShift) * 180.0
	lat = (y / originShift) * 180.0
	lat = 180.0 / math.Pi * (2.0*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return lon, lat
}

func (webMercator) fromGeographic(lon, lat float64) (x, y float64) {
	if math.Abs(lat) > maxMercatorLat || math.IsInf(lon, 0) {
		return inf, inf
	}
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return x, y
}

// rdNew is the polynomial approximation between RD New (Amersfoort / RD New)
// and ETRS89 geographic coordinates, accurate to about a metre inside the
// Netherlands.
type rdNew struct{}

const (
	rdX0   = 155000.0
	rdY0   = 463000.0
	rdPhi0 = 52.15517440
	rdLam0 = 5.38720621
)

type term struct {
	p, q int
	k    float64
}

var (
	rdToPhi = []term{
		{0, 1, 3235.65389}, {2, 0, -32.58297}, {0, 2, -0.24750}, {2, 1, -0.84978},
		{0, 3, -0.06550}, {2, 2, -0.01709}, {1, 0, -0.00738}, {4, 0, 0.00530},
		{2, 3, -0.00039}, {4, 1, 0.00033}, {1, 1, -0.00012},
	}
	rdToLam = []term{
		{1, 0, 5260.52916}, {1, 1, 105.94684}, {1, 2, 2.45656}, {3, 0, -0.81885},
		{1, 3, 0.05594}, {3, 1, -0.05607}, {0, 1, 0.01199}, {3, 2, -0.00256},
		{1, 4, 0.00128}, {0, 2, 0.00022}, {2, 0, -0.00022}, {5, 0, 0.00026},
	}
	geoToRDX = []term{
		{0, 1, 190094.945}, {1, 1, -11832.228}, {2, 1, -114.221}, {0, 3, -32.391},
		{1, 0, -0.705}, {3, 1, -2.340}, {1, 3, -0.608}, {0, 2, -0.008}, {2, 3, 0.148},
	}
	geoToRDY = []term{
		{1, 0, 309056.544}, {0, 2, 3638.893}, {2, 0, 73.077}, {1, 2, -157.984},
		{3, 0, 59.788}, {0, 1, 0.433}, {2, 2, -6.439}, {1, 1, -0.032},
		{0, 4, 0.092}, {1, 4, -0.054},
	}
)

func poly(ts []term, a, b float64) float64 {
	var s float64
	for _, t := range ts {
		s += t.k * math.Pow(a, float64(t.p)) * math.Pow(b, float64(t.q))
	}
	return s
}

func (rdNew) name() string       { return "RD New (polynomial approximation)" }
func (rdNew) methodCode() string { return "" }

func (rdNew) toGeographic(x, y float64) (lon, lat float64) {
	if !(x >= -7000 && x <= 300000 && y >= 289000 && y <= 629000) {
		return inf, inf
	}
	dx := (x - rdX0) * 1e-5
	dy := (y - rdY0) * 1e-5
	lat = rdPhi0 + poly(rdToPhi, dx, dy)/3600.0
	lon = rdLam0 + poly(rdToLam, dx, dy)/3600.0
	return lon, lat
}

func (rdNew) fromGeographic(lon, lat float64) (x, y float64) {
	if !inValidArea(lon, lat) {
		return inf, inf
	}
	dphi := 0.36 * (lat - rdPhi0)
	dlam := 0.36 * (lon - rdLam0)
	x = rdX0 + poly(geoToRDX, dphi, dlam)
	y = rdY0 + poly(geoToRDY, dphi, dlam)
	return x, y
}

// swissLV95 uses swisstopo's published approximation for CH1903+ / LV95.
type swissLV95 struct{}

func (swissLV95) name() string       { return "Swiss LV95 (approximation)" }
func (swissLV95) methodCode() string { return "" }

func (swissLV95) toGeographic(easting, northing float64) (lon, lat float64) {
	if math.IsInf(easting, 0) || math.IsInf(northing, 0) {
		return inf, inf
	}
	y := (easting - 2_600_000) / 1_000_000
	x := (northing - 1_200_000) / 1_000_000

	lonSec := 2.6779094 +
		4.728982*y +
		0.791484*y*x +
		0.1306*y*x*x -
		0.0436*y*y*y

	latSec := 16.9023892 +
		3.238272*x -
		0.270978*y*y -
		0.002528*x*x -
		0.0447*y*y*x -
		0.0140*x*x*x

	return lonSec * 100.0 / 36.0, latSec * 100.0 / 36.0
}

func (swissLV95) fromGeographic(lon, lat float64) (easting, northing float64) {
	if math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return inf, inf
	}
	phiAux := (lat*3600 - 169028.66) / 10000
	lambdaAux := (lon*3600 - 26782.5) / 10000

	easting = 2_600_072.37 +
		211_455.93*lambdaAux -
		10_938.51*lambdaAux*phiAux -
		0.36*lambdaAux*phiAux*phiAux -
		44.54*lambdaAux*lambdaAux*lambdaAux

	northing = 1_200_147.07 +
		308_807.95*phiAux +
		3_745.25*lambdaAux*lambdaAux +
		76.63*phiAux*phiAux -
		194.56*lambdaAux*lambdaAux*phiAux +
		119.79*phiAux*phiAux*phiAux
	return easting, northing
}

// validArea is the lon/lat box covered by the Dutch approximations (RD and
// the quasi-geoid surface).
var validArea = [4]float64{2.0, 50.0, 8.0, 56.0}

func inValidArea(lon, lat float64) bool {
	return lon >= validArea[0] && lon <= validArea[2] && lat >= validArea[1] && lat <= validArea[3]
}
