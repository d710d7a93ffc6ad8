package builtin

import "github.com/mohammed-shakir/crs-transform/internal/crs"

// frame is the geodetic reference frame a definition's geographic hub
// coordinates live in.
type frame string

const (
	frameWGS84    frame = "wgs84"
	frameETRS89   frame = "etrs89"
	frameITRF2014 frame = "itrf2014"
)

type heightRef int

const (
	heightNone heightRef = iota
	heightEllipsoidal
	heightNAP
)

type definition struct {
	crs    *crs.CRS
	frame  frame
	proj   projection
	height heightRef

	// vertical-only systems have no horizontal hub and no pipelines
	verticalOnly bool
}

const degreeFactor = 0.0174532925199433

var (
	datumWGS84    = crs.Datum{Name: "World Geodetic System 1984 ensemble"}
	datumETRS89   = crs.Datum{Name: "European Terrestrial Reference System 1989 ensemble"}
	datumETRF2000 = crs.Datum{Name: "European Terrestrial Reference Frame 2000"}
	datumITRF2014 = crs.Datum{Name: "International Terrestrial Reference Frame 2014", Dynamic: true}
	datumRD       = crs.Datum{Name: "Amersfoort"}
	datumCH1903   = crs.Datum{Name: "CH1903+"}
	datumNAP      = crs.Datum{Name: "Normaal Amsterdams Peil"}
)

func latAxis() crs.Axis {
	return crs.Axis{Name: "Geodetic latitude", Abbrev: "Lat", Direction: "north", UnitName: crs.UnitDegree, UnitConversionFactor: degreeFactor}
}

func lonAxis() crs.Axis {
	return crs.Axis{Name: "Geodetic longitude", Abbrev: "Lon", Direction: "east", UnitName: crs.UnitDegree, UnitConversionFactor: degreeFactor}
}

func metreAxis(name, abbrev, dir string) crs.Axis {
	return crs.Axis{Name: name, Abbrev: abbrev, Direction: dir, UnitName: crs.UnitMetre, UnitConversionFactor: 1}
}

func geographic2D(code, name string, d crs.Datum) *crs.CRS {
	return &crs.CRS{Authority: "EPSG", Code: code, Name: name, Kind: crs.KindGeographic2D,
		Axes: []crs.Axis{latAxis(), lonAxis()}, Datum: d}
}

func geographic3D(code, name string, d crs.Datum, horizontal *crs.CRS) *crs.CRS {
	return &crs.CRS{Authority: "EPSG", Code: code, Name: name, Kind: crs.KindGeographic3D,
		Axes:  []crs.Axis{latAxis(), lonAxis(), metreAxis("Ellipsoidal height", "h", "up")},
		Datum: d, Horizontal: horizontal}
}

func projected(code, name string, d crs.Datum, e, n string) *crs.CRS {
	return &crs.CRS{Authority: "EPSG", Code: code, Name: name, Kind: crs.KindProjected,
		Axes:  []crs.Axis{metreAxis("Easting", e, "east"), metreAxis("Northing", n, "north")},
		Datum: d}
}

func compound(code, name string, h, v *crs.CRS) *crs.CRS {
	axes := append(append([]crs.Axis{}, h.Axes...), v.Axes...)
	return &crs.CRS{Authority: "EPSG", Code: code, Name: name, Kind: crs.KindCompound,
		Axes: axes, Datum: h.Datum, Horizontal: h, Vertical: v}
}

// definitions returns a fresh registry table.
func definitions() []*definition {
	wgs84 := geographic2D("4326", "WGS 84", datumWGS84)
	etrs89 := geographic2D("4258", "ETRS89", datumETRS89)
	etrf2000 := geographic2D("9067", "ETRF2000", datumETRF2000)
	itrf2014 := geographic2D("9000", "ITRF2014", datumITRF2014)
	rd := projected("28992", "Amersfoort / RD New", datumRD, "X", "Y")
	nap := &crs.CRS{Authority: "EPSG", Code: "5709", Name: "NAP height", Kind: crs.KindVertical,
		Axes: []crs.Axis{metreAxis("Gravity-related height", "H", "up")}, Datum: datumNAP}

	return []*definition{
		{crs: wgs84, frame: frameWGS84},
		{crs: geographic3D("4979", "WGS 84", datumWGS84, wgs84), frame: frameWGS84, height: heightEllipsoidal},
		{crs: etrs89, frame: frameETRS89},
		{crs: geographic3D("4937", "ETRS89", datumETRS89, etrs89), frame: frameETRS89, height: heightEllipsoidal},
		{crs: etrf2000, frame: frameETRS89},
		{crs: geographic3D("7931", "ETRF2000", datumETRF2000, etrf2000), frame: frameETRS89, height: heightEllipsoidal},
		{crs: itrf2014, frame: frameITRF2014},
		{crs: geographic3D("7912", "ITRF2014", datumITRF2014, itrf2014), frame: frameITRF2014, height: heightEllipsoidal},
		{crs: projected("3857", "WGS 84 / Pseudo-Mercator", datumWGS84, "X", "Y"), frame: frameWGS84, proj: webMercator{}},
		{crs: rd, frame: frameETRS89, proj: rdNew{}},
		{crs: projected("2056", "CH1903+ / LV95", datumCH1903, "E", "N"), frame: frameWGS84, proj: swissLV95{}},
		{crs: nap, verticalOnly: true},
		{crs: compound("7415", "Amersfoort / RD New + NAP height", rd, nap), frame: frameETRS89, proj: rdNew{}, height: heightNAP},
		{crs: compound("9286", "ETRS89 + NAP height", etrs89, nap), frame: frameETRS89, height: heightNAP},
	}
}
