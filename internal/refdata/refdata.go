// Package refdata parses the bond reference and treasury curve feeds the
// collaborator layer hands the core: CSV-shaped reference data with
// percent-valued rates, converted to the decimal Bond/Curve types the
// pricing core operates on.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"bondoas/internal/bond"
	"bondoas/internal/curve"
)

// BondRecord is one row of the bond reference feed, columns as laid out
// in the feed itself (percent rates, MM/DD/YYYY dates, "#N/A" for an unset
// call date) before conversion to a bond.Bond.
type BondRecord struct {
	CUSIP          string
	Maturity       time.Time
	Ticker         string
	IssueDate      time.Time
	Coupon         float64 // percent, e.g. 4.5
	CouponType     string
	CouponFreq     int
	IssuedAmount   float64
	NextCallDate   time.Time
	NextCallSet    bool
	CompositeRating string
	MaturityType   string
	Announce       string
	Currency       string
	AskPrice       float64
}

// ToBond converts a reference record into the bond.Bond the pricing core
// operates on. The reference feed's "#N/A" convention only distinguishes
// callable from non-callable; it carries no call price, so a callable bond
// is assumed callable at par.
func (r BondRecord) ToBond() bond.Bond {
	b := bond.Bond{
		ID:            r.CUSIP,
		IssueDate:     r.IssueDate,
		EffectiveDate: r.IssueDate,
		MaturityDate:  r.Maturity,
		CouponRate:    r.Coupon / 100,
		CouponFreq:    r.CouponFreq,
		NextCallSet:   r.NextCallSet,
		NextCallDate:  r.NextCallDate,
	}
	b = b.WithDefaults()
	if b.NextCallSet {
		b.NextCallPrice = b.FaceValue
	}
	return b
}

const bondDateLayout = "01/02/2006"

var naPattern = regexp.MustCompile(`^\s*#N/A\s*$`)

// ErrBondNotFound is returned by FindByCUSIP when no record matches.
var ErrBondNotFound = fmt.Errorf("refdata: bond not found")

// FindByCUSIP returns the first record in records whose CUSIP matches cusip.
func FindByCUSIP(records []BondRecord, cusip string) (BondRecord, error) {
	for _, r := range records {
		if r.CUSIP == cusip {
			return r, nil
		}
	}
	return BondRecord{}, ErrBondNotFound
}

// LoadBonds parses the bond reference CSV at path: columns CUSIP, Maturity,
// Ticker, Issue Date, Cpn, Coupon Type, Coupon Freq, Issued Amount,
// Next Call Date, Composite Rating, Maturity Type, Announce, Currency,
// Ask Price.
func LoadBonds(path string) ([]BondRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBonds(f)
}

// ParseBonds is LoadBonds for a caller that already has a reader (e.g. an
// HTTP response body or an in-memory buffer from a collector).
func ParseBonds(r io.Reader) ([]BondRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: reading bond header: %w", err)
	}
	col, err := columnIndex(header, []string{
		"CUSIP", "Maturity", "Ticker", "Issue Date", "Cpn", "Coupon Type",
		"Coupon Freq", "Issued Amount", "Next Call Date", "Composite Rating",
		"Maturity Type", "Announce", "Currency", "Ask Price",
	})
	if err != nil {
		return nil, err
	}

	var records []BondRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: reading bond row: %w", err)
		}

		rec, err := parseBondRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("refdata: row for %q: %w", row[col["CUSIP"]], err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseBondRow(row []string, col map[string]int) (BondRecord, error) {
	maturity, err := time.Parse(bondDateLayout, strings.TrimSpace(row[col["Maturity"]]))
	if err != nil {
		return BondRecord{}, fmt.Errorf("parsing Maturity: %w", err)
	}
	issueDate, err := time.Parse(bondDateLayout, strings.TrimSpace(row[col["Issue Date"]]))
	if err != nil {
		return BondRecord{}, fmt.Errorf("parsing Issue Date: %w", err)
	}
	coupon, err := strconv.ParseFloat(strings.TrimSpace(row[col["Cpn"]]), 64)
	if err != nil {
		return BondRecord{}, fmt.Errorf("parsing Cpn: %w", err)
	}
	freq, err := strconv.Atoi(strings.TrimSpace(row[col["Coupon Freq"]]))
	if err != nil {
		return BondRecord{}, fmt.Errorf("parsing Coupon Freq: %w", err)
	}
	issuedAmount, _ := strconv.ParseFloat(strings.TrimSpace(row[col["Issued Amount"]]), 64)
	askPrice, _ := strconv.ParseFloat(strings.TrimSpace(row[col["Ask Price"]]), 64)

	rec := BondRecord{
		CUSIP:           row[col["CUSIP"]],
		Maturity:        maturity,
		Ticker:          row[col["Ticker"]],
		IssueDate:       issueDate,
		Coupon:          coupon,
		CouponType:      row[col["Coupon Type"]],
		CouponFreq:      freq,
		IssuedAmount:    issuedAmount,
		CompositeRating: row[col["Composite Rating"]],
		MaturityType:    row[col["Maturity Type"]],
		Announce:        row[col["Announce"]],
		Currency:        row[col["Currency"]],
		AskPrice:        askPrice,
	}

	callRaw := strings.TrimSpace(row[col["Next Call Date"]])
	if callRaw != "" && !naPattern.MatchString(callRaw) {
		callDate, err := time.Parse(bondDateLayout, callRaw)
		if err != nil {
			return BondRecord{}, fmt.Errorf("parsing Next Call Date: %w", err)
		}
		rec.NextCallDate = callDate
		rec.NextCallSet = true
	}

	return rec, nil
}

func columnIndex(header []string, required []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("refdata: missing required column %q", name)
		}
	}
	return col, nil
}

// tenorPattern matches "1 Mo", "3 Yr" style tenor headers.
var tenorPattern = regexp.MustCompile(`^(\d+)\s*(Mo|Yr)$`)

// svenPattern matches "SVENxx" zero-curve headers, where xx is a year tenor.
var svenPattern = regexp.MustCompile(`^SVEN(\d+)$`)

// tenorYears parses a tenor column header into a year offset, or returns
// ok=false if the header isn't a recognized tenor column.
func tenorYears(header string) (years float64, ok bool) {
	header = strings.TrimSpace(header)
	if m := tenorPattern.FindStringSubmatch(header); m != nil {
		n, _ := strconv.Atoi(m[1])
		if m[2] == "Mo" {
			return float64(n) / 12.0, true
		}
		return float64(n), true
	}
	if m := svenPattern.FindStringSubmatch(header); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n), true
	}
	return 0, false
}

// LoadCurve parses a curve CSV at path, selecting the row for rowDate (the
// "Date" column, MM/DD/YYYY) and building a curve.Curve with one sample per
// recognized tenor column, anchored at valueDate.
func LoadCurve(path string, rowDate, valueDate time.Time) (curve.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return curve.Curve{}, err
	}
	defer f.Close()
	return ParseCurve(f, rowDate, valueDate)
}

// ParseCurve is LoadCurve for a caller that already has a reader.
func ParseCurve(r io.Reader, rowDate, valueDate time.Time) (curve.Curve, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return curve.Curve{}, fmt.Errorf("refdata: reading curve header: %w", err)
	}

	type tenorColumn struct {
		index int
		years float64
	}
	var tenors []tenorColumn
	dateCol := -1
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "Date" {
			dateCol = i
			continue
		}
		if years, ok := tenorYears(trimmed); ok {
			tenors = append(tenors, tenorColumn{index: i, years: years})
		}
	}
	if dateCol == -1 {
		return curve.Curve{}, fmt.Errorf("refdata: curve feed missing Date column")
	}
	sort.Slice(tenors, func(i, j int) bool { return tenors[i].years < tenors[j].years })

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return curve.Curve{}, fmt.Errorf("refdata: no curve row for %s", rowDate.Format(bondDateLayout))
		}
		if err != nil {
			return curve.Curve{}, fmt.Errorf("refdata: reading curve row: %w", err)
		}

		d, err := time.Parse(bondDateLayout, strings.TrimSpace(row[dateCol]))
		if err != nil || !d.Equal(rowDate) {
			continue
		}

		c := curve.New(valueDate)
		for _, tc := range tenors {
			raw := strings.TrimSpace(row[tc.index])
			if raw == "" || naPattern.MatchString(raw) {
				continue
			}
			pct, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return curve.Curve{}, fmt.Errorf("refdata: parsing tenor %v%%: %w", tc.years, err)
			}
			sampleDate := valueDate.AddDate(0, int(tc.years*12+0.5), 0)
			c.Append(sampleDate, pct/100)
		}
		return c, nil
	}
}
