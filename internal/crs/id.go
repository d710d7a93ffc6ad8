package crs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidID = errors.New("invalid crs identifier")

var (
	uriPattern = regexp.MustCompile(`^https?://www\.opengis\.net/def/crs/([^/]+)/[^/]+/([^/]+)/?$`)
	urnPattern = regexp.MustCompile(`^urn:ogc:def:crs:([^:]+):[^:]*:([^:]+)$`)
	// AUTH:CODE, e.g. EPSG:28992 or NSGI:Saba_DPnet_Height
	authCodePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):([^:/\s]+)$`)
)

// ParseID extracts (authority, code) from AUTH:CODE, OGC URI or OGC URN
// notations. OGC:CRS84 is folded onto EPSG:4326 since both are lon/lat on
// WGS 84 once axis order is normalised.
func ParseID(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	var auth, code string
	switch {
	case uriPattern.MatchString(s):
		m := uriPattern.FindStringSubmatch(s)
		auth, code = m[1], m[2]
	case urnPattern.MatchString(s):
		m := urnPattern.FindStringSubmatch(s)
		auth, code = m[1], m[2]
	case authCodePattern.MatchString(s):
		m := authCodePattern.FindStringSubmatch(s)
		auth, code = m[1], m[2]
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	auth = strings.ToUpper(auth)
	if auth == "OGC" && strings.EqualFold(code, "CRS84") {
		return "EPSG", "4326", nil
	}
	return auth, code, nil
}

// Normalize returns the AUTH:CODE form of any notation accepted by ParseID.
func Normalize(s string) (string, error) {
	auth, code, err := ParseID(s)
	if err != nil {
		return "", err
	}
	return auth + ":" + code, nil
}

// IsAuthorityCode reports whether s is in the strict AUTH:CODE shape.
func IsAuthorityCode(s string) bool {
	return authCodePattern.MatchString(s)
}

func FormatURI(auth, code string) string {
	return fmt.Sprintf("http://www.opengis.net/def/crs/%s/0/%s", auth, code)
}
