package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"bondoas/internal/oas"
	"bondoas/internal/pricing"
	"bondoas/internal/refdata"
)

func parseValueDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

func main() {
	bondsPath := flag.String("bonds", "", "Path to the bond reference CSV")
	spotCurvePath := flag.String("spot-curve", "", "Path to the treasury spot curve CSV")
	parCurvePath := flag.String("par-curve", "", "Path to the treasury par curve CSV")
	cusip := flag.String("cusip", "", "CUSIP of the bond to price")
	valueDateStr := flag.String("value-date", "", "Value date (YYYY-MM-DD), defaults to today")
	price := flag.Float64("price", 0.0, "Market clean price")
	seedOAS := flag.Float64("oas", 0.0, "Seed spread for OAS calibration (defaults to the bond's coupon)")

	flag.Parse()

	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["bonds"] || !flagsSet["spot-curve"] || !flagsSet["par-curve"] || !flagsSet["cusip"] || !flagsSet["price"] {
		fmt.Println("Error: -bonds, -spot-curve, -par-curve, -cusip and -price flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	valueDate, err := parseValueDate(*valueDateStr)
	if err != nil {
		fmt.Printf("Error: invalid value date: %v\n", err)
		os.Exit(1)
	}

	bonds, err := refdata.LoadBonds(*bondsPath)
	if err != nil {
		fmt.Printf("Error: failed to load bonds: %v\n", err)
		os.Exit(1)
	}

	rec, err := refdata.FindByCUSIP(bonds, *cusip)
	if err != nil {
		fmt.Printf("Error: bond not found with cusip %s\n", *cusip)
		os.Exit(1)
	}
	b := rec.ToBond()

	spotCurve, err := refdata.LoadCurve(*spotCurvePath, valueDate, valueDate)
	if err != nil {
		fmt.Printf("Error: cannot find spot curve for %s: %v\n", valueDate.Format("2006-01-02"), err)
		os.Exit(1)
	}
	parCurve, err := refdata.LoadCurve(*parCurvePath, valueDate, valueDate)
	if err != nil {
		fmt.Printf("Error: cannot find par curve for %s: %v\n", valueDate.Format("2006-01-02"), err)
		os.Exit(1)
	}

	seedSpread := b.CouponRate
	if flagsSet["oas"] {
		seedSpread = *seedOAS
	}

	result, err := pricing.Price(oas.DefaultModelConfig(), b, spotCurve, parCurve, valueDate, *price, seedSpread)
	if err != nil {
		fmt.Printf("Error: pricing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bond Pricing:\n")
	fmt.Printf("\tCUSIP: %s\n", result.Bond.ID)
	fmt.Printf("\tCoupon Rate: %.3f%%\n", result.Bond.CouponRate*100)
	fmt.Printf("\tMaturity Date: %s\n", result.Bond.MaturityDate.Format("2006-01-02"))
	fmt.Printf("\tValue Date: %s\n", result.ValueDate.Format("2006-01-02"))
	fmt.Printf("\tMarket Price: %.3f\n", result.MarketPrice)
	fmt.Printf("\tYield to Maturity: %.6f%%\n", result.YTM*100)
	if result.Callable {
		fmt.Printf("\tYield to Call: %.6f%%\n", result.YTC*100)
	} else {
		fmt.Printf("\tYield to Call: n/a (not callable)\n")
	}
	fmt.Printf("\tYield to Worst: %.6f%% (on %s)\n", result.YTW*100, result.YTWDate.Format("2006-01-02"))
	fmt.Printf("\tTreasury Tenor: %s\n", result.TreasuryTenor.Format("2006-01-02"))
	fmt.Printf("\tTreasury Rate: %.6f%%\n", result.TreasuryRate*100)
	fmt.Printf("\tTreasury Spread: %.6f%%\n", result.TreasurySpread*100)
	fmt.Printf("\tJump-to-Default Risk: %.3f\n", result.JTD)
	fmt.Printf("\tOption-Adjusted Spread: %.6f%%\n", result.OAS*100)
}
