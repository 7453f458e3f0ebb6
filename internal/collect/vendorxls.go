package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pbnjay/grate"

	"bondoas/internal/logging"
	"bondoas/internal/refdata"
)

var SourceVendorXLS = "VendorXLS"

var naPatternVendor = regexp.MustCompile(`^\s*#N/A\s*$`)

// VendorXLSCollector downloads a vendor's daily bond reference workbook
// (xls) and parses it into BondRecords. Vendors that publish corporate
// bond reference data as a daily xls export (CUSIP, coupon, maturity,
// call schedule, ask price) are a common secondary feed alongside a
// pure-CSV treasury curve.
type VendorXLSCollector struct {
	reportURL string
	log       *logging.Logger
}

func NewVendorXLSCollector(reportURL string) *VendorXLSCollector {
	return &VendorXLSCollector{reportURL: reportURL, log: logging.New("collect.vendorxls")}
}

func (c *VendorXLSCollector) Source() string { return SourceVendorXLS }

func (c *VendorXLSCollector) Collect(ctx context.Context, date time.Time) (*CollectedBonds, error) {
	fetchURL := c.reportURL + "?date=" + url.QueryEscape(date.Format("2006-01-02"))

	client := &http.Client{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collect: vendor xls request returned http %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "bondoas-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	wb, err := grate.Open(tmp.Name())
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	collected := NewCollectedBonds(SourceVendorXLS, date)
	parsed := 0

	sheets, err := wb.List()
	if err != nil {
		return nil, err
	}
	for _, sheetName := range sheets {
		sheet, err := wb.Get(sheetName)
		if err != nil {
			return nil, err
		}
		header := true
		for sheet.Next() {
			row := sheet.Strings()
			if header {
				header = false
				continue
			}
			cr := parseVendorRow(row)
			collected.Add(cr)
			if cr.Err == nil {
				parsed++
			} else {
				c.log.Warn("vendor xls row rejected", "sheet", sheetName, "err", cr.Err)
			}
		}
	}

	if parsed == 0 {
		c.log.Error("vendor xls collection produced no usable rows", "date", date.Format("2006-01-02"))
		return nil, ErrDataUnavailable
	}
	c.log.Info("vendor xls collection complete", "date", date.Format("2006-01-02"), "parsed", parsed, "failed", len(collected.Failures))
	return collected, nil
}

// vendor xls column layout: CUSIP, Maturity, Ticker, Issue Date, Cpn,
// Coupon Type, Coupon Freq, Issued Amount, Next Call Date, Composite
// Rating, Maturity Type, Announce, Currency, Ask Price — the same shape
// as the CSV reference feed, just workbook-encoded.
const (
	xlsColCUSIP = iota
	xlsColMaturity
	xlsColTicker
	xlsColIssueDate
	xlsColCpn
	xlsColCouponType
	xlsColCouponFreq
	xlsColIssuedAmount
	xlsColNextCallDate
	xlsColCompositeRating
	xlsColMaturityType
	xlsColAnnounce
	xlsColCurrency
	xlsColAskPrice
)

func parseVendorRow(row []string) CollectedRecord {
	if len(row) <= xlsColAskPrice {
		return CollectedRecord{Err: ErrInvalidRow}
	}

	maturity, err := time.Parse("01/02/2006", strings.TrimSpace(row[xlsColMaturity]))
	if err != nil {
		return CollectedRecord{Err: fmt.Errorf("collect: parsing Maturity: %w", err)}
	}
	issueDate, err := time.Parse("01/02/2006", strings.TrimSpace(row[xlsColIssueDate]))
	if err != nil {
		return CollectedRecord{Err: fmt.Errorf("collect: parsing Issue Date: %w", err)}
	}
	coupon, err := strconv.ParseFloat(strings.TrimSpace(row[xlsColCpn]), 64)
	if err != nil {
		return CollectedRecord{Err: fmt.Errorf("collect: parsing Cpn: %w", err)}
	}
	freq, err := strconv.Atoi(strings.TrimSpace(row[xlsColCouponFreq]))
	if err != nil {
		return CollectedRecord{Err: fmt.Errorf("collect: parsing Coupon Freq: %w", err)}
	}
	issuedAmount, _ := strconv.ParseFloat(strings.TrimSpace(row[xlsColIssuedAmount]), 64)
	askPrice, _ := strconv.ParseFloat(strings.TrimSpace(row[xlsColAskPrice]), 64)

	rec := refdata.BondRecord{
		CUSIP:           strings.TrimSpace(row[xlsColCUSIP]),
		Maturity:        maturity,
		Ticker:          strings.TrimSpace(row[xlsColTicker]),
		IssueDate:       issueDate,
		Coupon:          coupon,
		CouponType:      strings.TrimSpace(row[xlsColCouponType]),
		CouponFreq:      freq,
		IssuedAmount:    issuedAmount,
		CompositeRating: strings.TrimSpace(row[xlsColCompositeRating]),
		MaturityType:    strings.TrimSpace(row[xlsColMaturityType]),
		Announce:        strings.TrimSpace(row[xlsColAnnounce]),
		Currency:        strings.TrimSpace(row[xlsColCurrency]),
		AskPrice:        askPrice,
	}

	callRaw := strings.TrimSpace(row[xlsColNextCallDate])
	if callRaw != "" && !naPatternVendor.MatchString(callRaw) {
		callDate, err := time.Parse("01/02/2006", callRaw)
		if err != nil {
			return CollectedRecord{Err: fmt.Errorf("collect: parsing Next Call Date: %w", err)}
		}
		rec.NextCallDate = callDate
		rec.NextCallSet = true
	}

	return CollectedRecord{Record: rec}
}
