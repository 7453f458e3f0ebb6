package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"bondoas/internal/logging"
	"bondoas/internal/refdata"
)

var SourceBondPage = "BondPage"

// BondPageCollector scrapes every row of a vendor's HTML quote table into a
// BondRecord (ticker, used as the CUSIP, plus coupon, maturity and ask
// price), the way a daily gilt-yield page publishes
// ticker/coupon/maturity/price/yield columns in an HTML table.
type BondPageCollector struct {
	pageURL string
	log     *logging.Logger
}

func NewBondPageCollector(pageURL string) *BondPageCollector {
	return &BondPageCollector{pageURL: pageURL, log: logging.New("collect.bondpage")}
}

func (c *BondPageCollector) Source() string { return SourceBondPage }

const bondPageDateLabel = "Last updated: "

// quote column order on the scraped page: Ticker, Description, Coupon,
// Maturity Date, Maturity Duration, Ask Price, Yield.
const (
	pageColTicker = iota
	pageColDesc
	pageColCoupon
	pageColMaturity
	pageColDuration
	pageColAskPrice
	pageColYield
)

func (c *BondPageCollector) Collect(ctx context.Context, date time.Time) (*CollectedBonds, error) {
	x := colly.NewCollector()

	var pageDate time.Time
	x.OnHTML("label", func(e *colly.HTMLElement) {
		if strings.HasPrefix(e.Text, bondPageDateLabel) {
			pageDate, _ = time.Parse("02 Jan 2006", strings.TrimPrefix(e.Text, bondPageDateLabel))
		}
	})

	collected := NewCollectedBonds(SourceBondPage, date)
	x.OnHTML("#mainbody tr", func(e *colly.HTMLElement) {
		cr := c.readRow(e)
		if cr.Err != nil {
			c.log.Warn("bond page row rejected", "err", cr.Err)
		}
		collected.Add(cr)
	})

	if err := x.Visit(c.pageURL); err != nil {
		return nil, err
	}

	if pageDate.IsZero() {
		c.log.Error("bond page missing last-updated label")
		return nil, ErrDataUnavailable
	}
	if !pageDate.Equal(date.Truncate(24 * time.Hour)) {
		c.log.Warn("bond page stale", "wantDate", date.Format("2006-01-02"), "pageDate", pageDate.Format("2006-01-02"))
		return nil, ErrDataUnavailable
	}

	return collected, nil
}

func (c *BondPageCollector) readRow(e *colly.HTMLElement) CollectedRecord {
	var rec refdata.BondRecord
	var rowErr error

	e.ForEach("td", func(col int, el *colly.HTMLElement) {
		if rowErr != nil {
			return
		}
		text := strings.TrimSpace(el.Text)
		switch col {
		case pageColTicker:
			if text == "" {
				rowErr = fmt.Errorf("collect: missing ticker")
				return
			}
			rec.Ticker = text
			rec.CUSIP = text
		case pageColDesc:
			// descriptive text only, not carried on BondRecord
		case pageColCoupon:
			v, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
			if err != nil {
				rowErr = fmt.Errorf("collect: invalid coupon %q: %w", text, err)
				return
			}
			rec.Coupon = v
		case pageColMaturity:
			d, err := time.Parse("02-Jan-2006", text)
			if err != nil {
				rowErr = fmt.Errorf("collect: invalid maturity date %q: %w", text, err)
				return
			}
			rec.Maturity = d
		case pageColDuration:
			// derived from maturity date, not carried
		case pageColAskPrice:
			v, err := strconv.ParseFloat(strings.TrimPrefix(text, "$"), 64)
			if err != nil {
				rowErr = fmt.Errorf("collect: invalid ask price %q: %w", text, err)
				return
			}
			rec.AskPrice = v
		case pageColYield:
			// informational only; the core recomputes yields itself
		}
	})

	if rowErr != nil {
		return CollectedRecord{Err: rowErr}
	}
	return CollectedRecord{Record: rec}
}
