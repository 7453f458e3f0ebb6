package main

import (
	"flag"
	"fmt"
	"os"

	"bondoas/internal/httpapi"
	"bondoas/internal/oas"
	"bondoas/internal/refdata"
)

func main() {
	bondsPath := flag.String("bonds", "", "Path to the bond reference CSV")
	spotCurvePath := flag.String("spot-curve", "", "Path to the treasury spot curve CSV")
	parCurvePath := flag.String("par-curve", "", "Path to the treasury par curve CSV")
	addr := flag.String("addr", ":8080", "Address to listen on")

	flag.Parse()

	if *bondsPath == "" || *spotCurvePath == "" || *parCurvePath == "" {
		fmt.Println("Error: -bonds, -spot-curve and -par-curve flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	bonds, err := refdata.LoadBonds(*bondsPath)
	if err != nil {
		fmt.Printf("Error: failed to load bonds: %v\n", err)
		os.Exit(1)
	}

	server := httpapi.NewServer(bonds, *spotCurvePath, *parCurvePath, oas.DefaultModelConfig())

	if err := server.Router().Run(*addr); err != nil {
		fmt.Printf("Error: server exited: %v\n", err)
		os.Exit(1)
	}
}
