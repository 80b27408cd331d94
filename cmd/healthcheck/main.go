package main

import (
	"context"
	"flag"
	"os"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/pkg/analysis"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	backendURL := flag.String("backend", cfg.Backend.URL, "analysis backend base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	color.Cyan("Checking analysis backend at %s\n", *backendURL)

	client := analysis.NewClient(*backendURL, *timeout)
	start := time.Now()
	if err := client.Health(context.Background()); err != nil {
		color.Red("Backend unavailable: %v", err)
		os.Exit(1)
	}
	color.Green("Backend healthy (%s)", time.Since(start).Round(time.Millisecond))
}
