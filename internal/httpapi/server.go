// Package httpapi exposes the pricing core over HTTP: a gin router with a
// /bond lookup and a /pricing endpoint that runs the full yield/OAS
// pipeline for one bond, one value date and one market price.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bondoas/internal/logging"
	"bondoas/internal/oas"
	"bondoas/internal/pricing"
	"bondoas/internal/refdata"
)

// Server holds the reference data and curves the routes operate against.
// A Server is read-only after construction: every request builds its own
// OAS engine instance and shares no mutable state with any other request.
type Server struct {
	bonds      []refdata.BondRecord
	spotCurves string
	parCurves  string
	cfg        oas.ModelConfig
	log        *logging.Logger
}

// NewServer builds a Server from an already-loaded bond reference table
// and the paths of the spot and par treasury curve CSVs (one row per
// calendar date; the date is selected per request from value_date).
func NewServer(bonds []refdata.BondRecord, spotCurvePath, parCurvePath string, cfg oas.ModelConfig) *Server {
	return &Server{
		bonds:      bonds,
		spotCurves: spotCurvePath,
		parCurves:  parCurvePath,
		cfg:        cfg,
		log:        logging.New("httpapi"),
	}
}

// Router builds the gin engine serving /bond and /pricing.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/bond", s.handleBond)
	r.GET("/pricing", s.handlePricing)
	return r
}

func (s *Server) handleBond(c *gin.Context) {
	cusip := c.Query("cusip")
	if cusip == "" {
		c.JSON(http.StatusOK, s.bonds)
		return
	}
	rec, err := refdata.FindByCUSIP(s.bonds, cusip)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bond not found with cusip " + cusip})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// pricingResponse is the pricing result bundle returned to callers: CUSIP,
// Coupon, Maturity, ValueDate, Price, ytm, ytc, ytw, ytw_date,
// ytm_to_treasury_spread, jtd, OAS.
type pricingResponse struct {
	CUSIP               string  `json:"CUSIP"`
	Coupon              float64 `json:"Coupon"`
	Maturity            string  `json:"Maturity"`
	ValueDate           string  `json:"ValueDate"`
	Price               float64 `json:"Price"`
	YTM                 float64 `json:"ytm"`
	YTC                 float64 `json:"ytc"`
	YTW                 float64 `json:"ytw"`
	YTWDate             string  `json:"ytw_date"`
	YTMToTreasurySpread float64 `json:"ytm_to_treasury_spread"`
	JTD                 float64 `json:"jtd"`
	OAS                 float64 `json:"OAS"`
}

const apiDateLayout = "01/02/2006"

func (s *Server) handlePricing(c *gin.Context) {
	cusip := c.Query("cusip")
	if cusip == "" {
		c.String(http.StatusBadRequest, "cusip is required")
		return
	}

	valueDate, err := time.Parse("20060102", c.Query("value_date"))
	if err != nil {
		c.String(http.StatusBadRequest, "value_date should be in YYYYMMDD format")
		return
	}

	price, err := parseQueryFloat(c.Query("price"))
	if err != nil {
		c.String(http.StatusBadRequest, "price should be a float number")
		return
	}

	rec, err := refdata.FindByCUSIP(s.bonds, cusip)
	if err != nil {
		c.String(http.StatusNotFound, "bond not found with cusip %s", cusip)
		return
	}
	b := rec.ToBond()

	spotCurve, err := refdata.LoadCurve(s.spotCurves, valueDate, valueDate)
	if err != nil {
		s.log.Error("spot curve load failed", "valueDate", c.Query("value_date"), "err", err)
		c.String(http.StatusNotFound, "cannot find spot curve for %s", c.Query("value_date"))
		return
	}
	parCurve, err := refdata.LoadCurve(s.parCurves, valueDate, valueDate)
	if err != nil {
		s.log.Error("par curve load failed", "valueDate", c.Query("value_date"), "err", err)
		c.String(http.StatusNotFound, "cannot find par curve for %s", c.Query("value_date"))
		return
	}

	seedSpread := b.CouponRate
	if raw := c.Query("oas"); raw != "" {
		seedSpread, err = parseQueryFloat(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "oas should be a float number")
			return
		}
	}

	result, err := pricing.Price(s.cfg, b, spotCurve, parCurve, valueDate, price, seedSpread)
	if err != nil {
		s.log.Error("pricing failed", "cusip", cusip, "err", err)
		c.String(http.StatusUnprocessableEntity, "pricing failed: %v", err)
		return
	}

	c.JSON(http.StatusOK, pricingResponse{
		CUSIP:               b.ID,
		Coupon:              rec.Coupon,
		Maturity:            b.MaturityDate.Format(apiDateLayout),
		ValueDate:           valueDate.Format(apiDateLayout),
		Price:               price,
		YTM:                 result.YTM,
		YTC:                 result.YTC,
		YTW:                 result.YTW,
		YTWDate:             result.YTWDate.Format(apiDateLayout),
		YTMToTreasurySpread: result.TreasurySpread,
		JTD:                 result.JTD,
		OAS:                 result.OAS,
	})
}

func parseQueryFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
