package assets_test

import (
	"testing"

	"github.com/mohammed-shakir/crs-transform/internal/assets"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

func TestDefaultConfigExcludesRDNAPToRD(t *testing.T) {
	ex, err := transform.ParseExclusions(assets.CRSConfig)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ex.Excluded("EPSG:7415", "EPSG:28992") {
		t.Fatal("EPSG:7415 -> EPSG:28992 must be excluded")
	}
	if ex.Excluded("EPSG:28992", "EPSG:7415") {
		t.Fatal("reverse pair must not be excluded")
	}
}
