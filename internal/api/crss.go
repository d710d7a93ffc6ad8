package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/crs-transform/internal/core/problem"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
)

type link struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Rel   string `json:"rel"`
	Href  string `json:"href"`
}

type landingPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       []link `json:"links"`
}

type conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// crsView is the public description of one supported CRS.
type crsView struct {
	CRS        string     `json:"crs"`
	Name       string     `json:"name"`
	TypeName   string     `json:"type_name"`
	AuthID     string     `json:"crs_auth_identifier"`
	Authority  string     `json:"authority"`
	Identifier string     `json:"identifier"`
	Dimensions int        `json:"dimensions"`
	Axes       []crs.Axis `json:"axes"`
}

var typeNames = map[crs.Kind]string{
	crs.KindGeographic2D: "Geographic 2D CRS",
	crs.KindGeographic3D: "Geographic 3D CRS",
	crs.KindProjected:    "Projected CRS",
	crs.KindVertical:     "Vertical CRS",
	crs.KindCompound:     "Compound CRS",
}

func viewOf(c *crs.CRS) crsView {
	return crsView{
		CRS:        c.URI(),
		Name:       c.Name,
		TypeName:   typeNames[c.Kind],
		AuthID:     c.AuthorityCode(),
		Authority:  c.Authority,
		Identifier: c.Code,
		Dimensions: c.Dim(),
		Axes:       c.Axes,
	}
}

func (h *Handler) landing(w http.ResponseWriter, _ *http.Request) {
	base := strings.TrimRight(h.cfg.BaseURL, "/")
	writeJSON(w, http.StatusOK, mediaJSON, landingPage{
		Title:       h.cfg.Title,
		Description: "Landing page describing the capabilities of this service",
		Links: []link{
			{Title: "API Landing Page", Type: mediaJSON, Rel: "self", Href: base + "/?f=json"},
			{Title: "Supported coordinate reference systems", Type: mediaJSON, Rel: "data", Href: base + "/crss"},
			{Title: "Conformance Declaration as JSON", Type: mediaJSON, Rel: "http://www.opengis.net/def/rel/ogc/1.0/conformance", Href: base + "/conformance"},
		},
	})
}

func (h *Handler) conformance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mediaJSON, conformance{ConformsTo: []string{
		"https://docs.ogc.org/is/19-072/19-072.html",
		"https://gitdocumentatie.logius.nl/publicatie/api/adr/",
	}})
}

func (h *Handler) listCRSs(w http.ResponseWriter, _ *http.Request) {
	list := h.provider.List()
	out := make([]crsView, 0, len(list))
	for _, c := range list {
		out = append(out, viewOf(c))
	}
	writeJSON(w, http.StatusOK, mediaJSON, out)
}

// getCRS matches the exact AUTH:CODE identifier, as listed by /crss.
func (h *Handler) getCRS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, c := range h.provider.List() {
		if c.AuthorityCode() == id {
			writeJSON(w, http.StatusOK, mediaJSON, viewOf(c))
			return
		}
	}
	problem.Write(w, unknownCRS(id, http.StatusNotFound))
}
