// Command lightcurve assembles a forced-photometry light curve for one
// object, from per-visit table files or from the forced-photometry database,
// and optionally plots it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/db"
	"lightcurve-monitor/internal/lightcurve"
	"lightcurve-monitor/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "configuration file (defaults to $CONFIG_PATH or ./config/config.yaml)")
		objID      = flag.Int64("objid", 0, "object identifier")
		ra         = flag.Float64("ra", 0, "right ascension in degrees (with -dec)")
		dec        = flag.Float64("dec", 0, "declination in degrees (with -ra)")
		tol        = flag.Float64("tol", 0.005, "coordinate match tolerance in degrees")
		fromFiles  = flag.Bool("files", false, "assemble from per-visit table files instead of the database")
		plotPath   = flag.String("plot", "", "write a light-curve plot to this file")
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

	var appStore store.Store
	if !*fromFiles {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		appStore = store.NewGormStore(gormDB)
	}

	lcCfg := cfg.LightCurve
	if !*fromFiles {
		// database mode never touches the table tree
		lcCfg.FPTableDir = ""
	}
	lc, err := lightcurve.New(appStore, lcCfg, cfg.Phot.Filters)
	if err != nil {
		log.Fatalf("failed to initialize assembler: %v", err)
	}

	if *fromFiles {
		if *objID == 0 {
			log.Fatalf("-files mode requires -objid")
		}
		err = lc.BuildFromForcedFiles(*objID)
	} else {
		opts := lightcurve.BuildOpts{Tol: *tol}
		if isFlagSet("objid") {
			opts.ObjectID = objID
		}
		if isFlagSet("ra") && isFlagSet("dec") {
			opts.RA = ra
			opts.Dec = dec
		}
		err = lc.BuildFromDB(context.Background(), opts)
	}
	if err != nil {
		log.Fatalf("failed to build light curve: %v", err)
	}

	points, err := lc.Points()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("assembled %d light-curve points", len(points))

	if *plotPath != "" {
		if err := lc.Visualize(*plotPath); err != nil {
			log.Fatalf("failed to plot light curve: %v", err)
		}
		log.Printf("wrote plot to %s", *plotPath)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(points); err != nil {
		log.Fatalf("failed to encode light curve: %v", err)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
