package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mohammed-shakir/crs-transform/internal/core/model"
)

func TestParseCoordinates(t *testing.T) {
	got, err := ParseCoordinates("155000,463000")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0] != 155000 || got[1] != 463000 {
		t.Fatalf("got %v", got)
	}

	got, err = ParseCoordinates("-5.5,52.1,-3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 3 || got[0] != -5.5 || got[2] != -3 {
		t.Fatalf("got %v", got)
	}

	for _, bad := range []string{"1", "1,2,3,4", "a,b", "1;2", "1, 2"} {
		if _, err := ParseCoordinates(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseTransformRequest_HeaderFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transform?epoch=2010.5", nil)
	req.Header.Set(HeaderContentCRS, "EPSG:28992")
	req.Header.Set(HeaderAcceptCRS, "EPSG:4326")

	got, err := ParseTransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Source != "EPSG:28992" || got.Target != "EPSG:4326" {
		t.Fatalf("got %+v", got)
	}
	if got.Epoch == nil || *got.Epoch != 2010.5 {
		t.Fatalf("epoch=%v", got.Epoch)
	}
}

func TestParseTransformRequest_QueryWins(t *testing.T) {
	q := url.Values{}
	q.Set("source-crs", "EPSG:7415")
	q.Set("target-crs", "EPSG:7931")
	req := httptest.NewRequest(http.MethodPost, "/transform?"+q.Encode(), nil)
	req.Header.Set(HeaderContentCRS, "EPSG:28992")
	req.Header.Set(HeaderAcceptCRS, "EPSG:4326")

	got, err := ParseTransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Source != "EPSG:7415" || got.Target != "EPSG:7931" || got.Epoch != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestParseTransformRequest_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/transform?source-crs=EPSG:28992", nil)
	if _, err := ParseTransformRequest(req); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("err=%v want ErrMissingTarget", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/transform?target-crs=EPSG:4326&epoch=soon", nil)
	if _, err := ParseTransformRequest(req); err == nil {
		t.Fatal("expected error for invalid epoch")
	}

	// a POST may leave the source to the body
	req = httptest.NewRequest(http.MethodPost, "/transform?target-crs=EPSG:4326", nil)
	if _, err := ParseTransformRequest(req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestParsePointRequest_MissingSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transform?coordinates=1,2&target-crs=EPSG:4326", nil)
	if _, err := ParsePointRequest(req); !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err=%v want ErrMissingSource", err)
	}
}

type fakeHandler struct {
	last model.PointRequest
}

func (f *fakeHandler) HandlePoint(_ context.Context, w http.ResponseWriter, _ *http.Request, q model.PointRequest) {
	f.last = q
	w.WriteHeader(http.StatusNoContent)
}

func TestHandlePoint_SeamDispatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &fakeHandler{}
	hdl := HandlePoint(logger, h)

	req := httptest.NewRequest(http.MethodGet, "/transform?coordinates=155000,463000&source-crs=EPSG:28992&target-crs=EPSG:4326", nil)
	rr := httptest.NewRecorder()
	hdl(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from fake handler, got %d", rr.Code)
	}
	if h.last.Source != "EPSG:28992" || len(h.last.Coordinates) != 2 {
		t.Fatalf("handler did not receive parsed request: %+v", h.last)
	}
}

func TestHandlePoint_ValidationProblem(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &fakeHandler{}
	req := httptest.NewRequest(http.MethodGet, "/transform?coordinates=x&source-crs=EPSG:28992&target-crs=EPSG:4326", nil)
	rr := httptest.NewRecorder()
	HandlePoint(logger, h)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != float64(400) {
		t.Fatalf("body=%v", body)
	}
}
