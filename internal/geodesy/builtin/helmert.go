package builtin

import "math"

// GRS80; WGS 84 differs by 0.1 mm in the semi-minor axis, which is ignored.
const (
	semiMajor  = 6378137.0
	flattening = 1 / 298.257222101
)

var ecc2 = flattening * (2 - flattening)

const (
	deg2rad = math.Pi / 180
	mas2rad = math.Pi / (180 * 3600 * 1000)
)

func toGeocentric(lon, lat, h float64) (x, y, z float64) {
	phi := lat * deg2rad
	lam := lon * deg2rad
	sinPhi := math.Sin(phi)
	n := semiMajor / math.Sqrt(1-ecc2*sinPhi*sinPhi)
	x = (n + h) * math.Cos(phi) * math.Cos(lam)
	y = (n + h) * math.Cos(phi) * math.Sin(lam)
	z = (n*(1-ecc2) + h) * sinPhi
	return x, y, z
}

// fromGeocentric uses Bowring's method followed by two refinement passes,
// which is sub-millimetre for terrestrial heights.
func fromGeocentric(x, y, z float64) (lon, lat, h float64) {
	p := math.Hypot(x, y)
	lam := math.Atan2(y, x)
	phi := math.Atan2(z, p*(1-ecc2))
	for i := 0; i < 3; i++ {
		sinPhi := math.Sin(phi)
		n := semiMajor / math.Sqrt(1-ecc2*sinPhi*sinPhi)
		h = p/math.Cos(phi) - n
		phi = math.Atan2(z, p*(1-ecc2*n/(n+h)))
	}
	sinPhi := math.Sin(phi)
	n := semiMajor / math.Sqrt(1-ecc2*sinPhi*sinPhi)
	h = p/math.Cos(phi) - n
	return lam / deg2rad, phi / deg2rad, h
}

// helmert holds the 14 parameters of a time-dependent position vector
// transformation. Translations in metres, scale in ppb, rotations in
// milliarcseconds; rates per year.
type helmert struct {
	tx, ty, tz    float64
	d             float64
	rx, ry, rz    float64
	dtx, dty, dtz float64
	dd            float64
	drx, dry, drz float64
	refEpoch      float64
}

// itrf2014ToETRF2000 are the EUREF parameters ITRF2014 -> ETRF2000 at 2010.0.
var itrf2014ToETRF2000 = helmert{
	tx:       0.0537,
	ty:       0.0512,
	tz:       -0.0551,
	d:        1.02,
	rx:       0.891,
	ry:       5.390,
	rz:       -8.712,
	dtx:      0.0001,
	dty:      0.0001,
	dtz:      -0.0019,
	dd:       0.11,
	drx:      0.081,
	dry:      0.490,
	drz:      -0.792,
	refEpoch: 2010.0,
}

func (p helmert) inverse() helmert {
	return helmert{
		tx:       -p.tx,
		ty:       -p.ty,
		tz:       -p.tz,
		d:        -p.d,
		rx:       -p.rx,
		ry:       -p.ry,
		rz:       -p.rz,
		dtx:      -p.dtx,
		dty:      -p.dty,
		dtz:      -p.dtz,
		dd:       -p.dd,
		drx:      -p.drx,
		dry:      -p.dry,
		drz:      -p.drz,
		refEpoch: p.refEpoch,
	}
}

// apply transforms geocentric coordinates observed at epoch t.
func (p helmert) apply(x, y, z, t float64) (float64, float64, float64) {
	dt := t - p.refEpoch
	tx := p.tx + p.dtx*dt
	ty := p.ty + p.dty*dt
	tz := p.tz + p.dtz*dt
	s := (p.d + p.dd*dt) * 1e-9
	rx := (p.rx + p.drx*dt) * mas2rad
	ry := (p.ry + p.dry*dt) * mas2rad
	rz := (p.rz + p.drz*dt) * mas2rad

	nx := x + tx + s*x - rz*y + ry*z
	ny := y + ty + rz*x + s*y - rx*z
	nz := z + tz - ry*x + rx*y + s*z
	return nx, ny, nz
}

// applyGeographic runs the Helmert on lon/lat/h. An infinite height is
// carried through without contaminating the horizontal result.
func (p helmert) applyGeographic(lon, lat, h, t float64) (float64, float64, float64) {
	if math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return inf, inf, h
	}
	infHeight := math.IsInf(h, 0) || math.IsNaN(h)
	if infHeight {
		h = 0
	}
	x, y, z := toGeocentric(lon, lat, h)
	x, y, z = p.apply(x, y, z, t)
	lon, lat, h = fromGeocentric(x, y, z)
	if infHeight {
		h = inf
	}
	return lon, lat, h
}
