package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bondoas/internal/oas"
	"bondoas/internal/refdata"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("01/02/2006", s)
	if err != nil {
		panic(err)
	}
	return d
}

func init() {
	gin.SetMode(gin.TestMode)
}

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func testServer(t *testing.T) *Server {
	t.Helper()

	bonds := []refdata.BondRecord{
		{
			CUSIP:      "912828ZZ1",
			Maturity:   mustDate("12/31/2030"),
			Ticker:     "TBOND",
			IssueDate:  mustDate("01/01/2020"),
			Coupon:     4.0,
			CouponFreq: 2,
			AskPrice:   99.5,
		},
	}

	curveCSV := "Date,1 Yr,5 Yr,10 Yr\n01/02/2026,4.00,4.00,4.00\n"
	spotPath := writeTempCSV(t, "spot.csv", curveCSV)
	parPath := writeTempCSV(t, "par.csv", curveCSV)

	return NewServer(bonds, spotPath, parPath, oas.DefaultModelConfig())
}

func TestHandleBondListsAll(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bond", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var recs []refdata.BondRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(recs) != 1 || recs[0].CUSIP != "912828ZZ1" {
		t.Fatalf("unexpected bond list: %+v", recs)
	}
}

func TestHandleBondNotFound(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bond?cusip=nope", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandlePricingReturnsFullBundle(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pricing?cusip=912828ZZ1&value_date=20260102&price=99.5", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp pricingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.CUSIP != "912828ZZ1" {
		t.Fatalf("CUSIP = %q", resp.CUSIP)
	}
	if resp.Coupon != 4.0 {
		t.Fatalf("Coupon = %v, want 4.0", resp.Coupon)
	}
	if resp.YTM <= 0 {
		t.Fatalf("YTM = %v, want > 0", resp.YTM)
	}
}

func TestHandlePricingRejectsBadDate(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pricing?cusip=912828ZZ1&value_date=not-a-date&price=99.5", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
