// Package crs models coordinate reference systems: identifiers, axes, units
// and the horizontal/vertical components of compound systems.
package crs

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCRS = errors.New("unknown crs")

type Kind string

const (
	KindGeographic2D Kind = "geographic2d"
	KindGeographic3D Kind = "geographic3d"
	KindProjected    Kind = "projected"
	KindVertical     Kind = "vertical"
	KindCompound     Kind = "compound"
)

const (
	UnitDegree = "degree"
	UnitMetre  = "metre"
)

type Axis struct {
	Name                 string  `json:"name"`
	Abbrev               string  `json:"abbrev"`
	Direction            string  `json:"direction"`
	UnitName             string  `json:"unit_name"`
	UnitConversionFactor float64 `json:"unit_conversion_factor"`
}

// Datum describes the reference frame. Dynamic marks a dynamic geodetic
// reference frame, in which coordinates are only meaningful with an epoch.
type Datum struct {
	Name    string `json:"name"`
	Dynamic bool   `json:"dynamic,omitempty"`
}

type CRS struct {
	Authority string `json:"authority"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Axes      []Axis `json:"axes"`
	Datum     Datum  `json:"datum"`

	// Horizontal is the 2D part of a compound or 3D geographic system.
	Horizontal *CRS `json:"-"`
	// Vertical is the height part of a compound system.
	Vertical *CRS `json:"-"`
}

func (c *CRS) AuthorityCode() string {
	return c.Authority + ":" + c.Code
}

func (c *CRS) URI() string {
	return FormatURI(c.Authority, c.Code)
}

func (c *CRS) Dim() int { return len(c.Axes) }

func (c *CRS) IsCompound() bool { return c.Kind == KindCompound }

// To2D returns the horizontal-only counterpart, or c itself when it is
// already two-dimensional.
func (c *CRS) To2D() *CRS {
	if c.Horizontal != nil {
		return c.Horizontal
	}
	return c
}

func (c *CRS) Equal(o *CRS) bool {
	if c == nil || o == nil {
		return c == o
	}
	return strings.EqualFold(c.AuthorityCode(), o.AuthorityCode())
}

func (c *CRS) String() string { return c.AuthorityCode() }

// XUnit returns the unit of the easting/longitude axis. Only degree and
// metre based systems are supported.
func (c *CRS) XUnit() (string, error) {
	for _, a := range c.Axes {
		switch strings.ToLower(a.Abbrev) {
		case "x", "e", "lon":
			if a.UnitName != UnitDegree && a.UnitName != UnitMetre {
				return "", fmt.Errorf("unexpected unit of x axis (x, E, lon) of crs %s: %q (want degree or metre)",
					c.AuthorityCode(), a.UnitName)
			}
			return a.UnitName, nil
		}
	}
	return "", fmt.Errorf("unable to retrieve unit of x axis (x, E, lon) of crs %s", c.AuthorityCode())
}

// IsAngular reports whether the first axis is expressed in degrees.
func (c *CRS) IsAngular() bool {
	return len(c.Axes) > 0 && c.Axes[0].UnitName == UnitDegree
}
