package collect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bondoas/internal/curve"
	"bondoas/internal/logging"
	"bondoas/internal/refdata"
)

var SourceTreasuryCurve = "TreasuryCurve"

// TreasuryCurveCollector downloads the US Treasury daily par-yield CSV for
// a given month and extracts the row for a single value date.
type TreasuryCurveCollector struct {
	client *http.Client
	log    *logging.Logger
}

func NewTreasuryCurveCollector() *TreasuryCurveCollector {
	return &TreasuryCurveCollector{client: &http.Client{}, log: logging.New("collect.treasurycurve")}
}

func (c *TreasuryCurveCollector) Source() string { return SourceTreasuryCurve }

// FetchCurve downloads and parses the curve for valueDate, anchoring the
// resulting curve.Curve at valueDate.
func (c *TreasuryCurveCollector) FetchCurve(ctx context.Context, valueDate time.Time) (curve.Curve, error) {
	yearMonth := valueDate.Format("200601")
	url := fmt.Sprintf(
		"https://home.treasury.gov/resource-center/data-chart-center/interest-rates/daily-treasury-rates.csv/all/%s"+
			"?type=daily_treasury_yield_curve&field_tdr_date_value_month=%s&page&_format=csv",
		yearMonth, yearMonth,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return curve.Curve{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return curve.Curve{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("treasury curve request failed", "status", resp.StatusCode, "url", url)
		return curve.Curve{}, fmt.Errorf("collect: treasury curve request returned http %d", resp.StatusCode)
	}

	crv, err := refdata.ParseCurve(resp.Body, valueDate, valueDate)
	if err != nil {
		c.log.Error("treasury curve parse failed", "valueDate", valueDate.Format("2006-01-02"), "err", err)
		return curve.Curve{}, err
	}
	return crv, nil
}
