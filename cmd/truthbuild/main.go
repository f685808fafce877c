// Command truthbuild extracts the simulation truth fluxes for a set of
// visits and writes them to a sqlite table.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/catalog"
	"lightcurve-monitor/internal/opsim"
	"lightcurve-monitor/internal/phot"
	"lightcurve-monitor/internal/truth"
	"lightcurve-monitor/internal/visits"
)

func main() {
	var (
		configPath = flag.String("config", "", "configuration file (defaults to $CONFIG_PATH or ./config/config.yaml)")
		visitsCSV  = flag.String("visits", "", "visit list CSV (defaults to the bundled selection)")
		outPath    = flag.String("out", "", "output sqlite file (overrides config)")
		table      = flag.String("table", "", "output table name (overrides config)")
	)
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}
	if *configPath == "" {
		*configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", *configPath, err)
	}
	if *outPath != "" {
		cfg.Truth.OutputPath = *outPath
	}
	if *table != "" {
		cfg.Truth.OutputTable = *table
	}
	if cfg.Truth.OutputPath == "" {
		log.Fatalf("no output path configured; set truth.output_path or pass -out")
	}

	cache, err := catalog.Open(cfg.Truth.CatalogDSN)
	if err != nil {
		log.Fatalf("failed to open star catalog: %v", err)
	}

	obsGen, err := opsim.NewGenerator(cfg.Truth.OpsimPath)
	if err != nil {
		log.Fatalf("failed to open survey pointing database: %v", err)
	}

	dict, err := phot.LoadDict(cfg.Phot.BandpassDir, cfg.Phot.Filters)
	if err != nil {
		log.Fatalf("failed to load bandpasses: %v", err)
	}

	var visitIDs []int64
	if *visitsCSV != "" {
		if visitIDs, err = visits.LoadIDs(*visitsCSV); err != nil {
			log.Fatalf("failed to load visit list: %v", err)
		}
	}

	builder := truth.NewBuilder(cache, obsGen, dict, cfg.Phot.SedDir, cfg.Truth)
	if err := builder.Build(context.Background(), visitIDs); err != nil {
		log.Fatalf("truth build failed: %v", err)
	}
	log.Printf("accumulated %d truth flux rows", len(builder.Rows()))

	if err := builder.WriteToDB(cfg.Truth.OutputPath, cfg.Truth.OutputTable); err != nil {
		log.Fatalf("failed to write truth table: %v", err)
	}
	log.Printf("wrote table %q to %s", cfg.Truth.OutputTable, cfg.Truth.OutputPath)
}
