package builtin

// Plane fitted to the Dutch quasi-geoid around the RD origin. Metre-level
// accuracy only; heights outside validArea are unavailable.
const (
	geoidN0   = 43.20
	geoidDLat = 1.10
	geoidDLon = 0.60
	geoidLat0 = 52.156
	geoidLon0 = 5.387
)

// quasiGeoidHeight returns the height of the quasi-geoid above the ETRS89
// ellipsoid, or +Inf outside the covered area.
func quasiGeoidHeight(lon, lat float64) float64 {
	if !inValidArea(lon, lat) {
		return inf
	}
	return geoidN0 + geoidDLat*(lat-geoidLat0) + geoidDLon*(lon-geoidLon0)
}
