// cmd/cdti/main.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// cdti replays recorded aircraft tracks through the traffic-awareness
// engine: interactively, printing advisory changes as the timeline
// plays, or in batch, exporting every advisory in a time range as CSV.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mmp/cdti/pkg/archive"
	"github.com/mmp/cdti/pkg/log"
	"github.com/mmp/cdti/pkg/timeline"
	"github.com/mmp/cdti/pkg/traffic"
	"github.com/mmp/cdti/pkg/util"
)

var (
	tracksDir   = flag.String("tracks", "", "directory of aircraft track CSV files")
	ownshipID   = flag.String("ownship", "", "aircraft id to center the display on")
	configFile  = flag.String("config", "", "filename of JSON file with engine configuration")
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	doExport    = flag.Bool("export", false, "export alerts over the timeline instead of replaying")
	exportFrom  = flag.String("from", "", "export range start (RFC3339); defaults to timeline start")
	exportTo    = flag.String("to", "", "export range stop (RFC3339); defaults to timeline end")
	outputFile  = flag.String("o", "", "output CSV filename; defaults to a name encoding the TAU configuration")
	archiveFile = flag.String("archive", "", "also store exported alerts in this sqlite database")
	uploadTo    = flag.String("upload", "", "GCS bucket to upload the export artifacts to")
	credentials = flag.String("credentials", "", "service account JSON for -upload")
	noCache     = flag.Bool("nocache", false, "ignore the parsed-track cache")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	if *tracksDir == "" || *ownshipID == "" {
		fmt.Fprintf(os.Stderr, "cdti: both -tracks and -ownship are required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg := traffic.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = traffic.LoadConfig(*configFile); err != nil {
			fatal(lg, "%s: %v", *configFile, err)
		}
	}
	cfg.OwnshipID = *ownshipID

	load := timeline.LoadTracksCached
	if *noCache {
		load = timeline.LoadTracks
	}
	tracks, err := load(*tracksDir, lg)
	if err != nil {
		fatal(lg, "%s: %v", *tracksDir, err)
	}

	provider := timeline.NewProvider(tracks)
	engine := traffic.NewEngine(provider, cfg, lg)

	if *doExport {
		if err := exportAlerts(engine, provider, *cfg, lg); err != nil {
			fatal(lg, "export: %v", err)
		}
		return
	}

	replay(engine, provider, cfg, lg)
}

func fatal(lg *log.Logger, msg string, args ...any) {
	lg.Errorf(msg, args...)
	fmt.Fprintf(os.Stderr, "cdti: "+msg+"\n", args...)
	os.Exit(1)
}

func parseRange(provider *timeline.Provider) (time.Time, time.Time, error) {
	start, stop := provider.Start(), provider.End()
	if *exportFrom != "" {
		var err error
		if start, err = time.Parse(time.RFC3339, *exportFrom); err != nil {
			return start, stop, err
		}
	}
	if *exportTo != "" {
		var err error
		if stop, err = time.Parse(time.RFC3339, *exportTo); err != nil {
			return start, stop, err
		}
	}
	return start, stop, nil
}

func exportAlerts(engine *traffic.Engine, provider *timeline.Provider, cfg traffic.Config, lg *log.Logger) error {
	start, stop, err := parseRange(provider)
	if err != nil {
		return err
	}

	records, err := engine.ExportAlerts(start, stop)
	if err == traffic.ErrNoAlerts {
		fmt.Printf("No alerts between %s and %s\n", start, stop)
		return nil
	} else if err != nil {
		return err
	}

	csvName := *outputFile
	if csvName == "" {
		csvName = traffic.ExportFilename(cfg, start)
	}
	metaName := csvName + ".meta.json"

	f, err := os.Create(csvName)
	if err != nil {
		return err
	}
	if err := traffic.WriteAlertsCSV(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	mf, err := os.Create(metaName)
	if err != nil {
		return err
	}
	if err := traffic.WriteExportMetadata(mf, cfg, start, stop, len(records)); err != nil {
		mf.Close()
		return err
	}
	if err := mf.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %d alert records to %s\n", len(records), csvName)

	if *archiveFile != "" {
		store, err := archive.Open(*archiveFile)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InsertRecords(cfg.OwnshipID, records); err != nil {
			return err
		}
		if counts, err := store.SummaryByLevel(); err == nil {
			for _, level := range util.SortedMapKeys(counts) {
				fmt.Printf("  %s: %d archived\n", level, counts[level])
			}
		}
	}

	if *uploadTo != "" {
		if err := upload(csvName, metaName, lg); err != nil {
			return err
		}
	}
	return nil
}

func upload(csvName, metaName string, lg *log.Logger) error {
	creds, err := os.ReadFile(*credentials)
	if err != nil {
		return fmt.Errorf("-upload requires -credentials: %w", err)
	}
	client, err := util.MakeGCSClient(*uploadTo, util.GCSClientConfig{Credentials: creds})
	if err != nil {
		return err
	}

	for name, ctype := range map[string]string{csvName: "text/csv", metaName: "application/json"} {
		b, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if err := client.Put(name, ctype, bytes.NewReader(b)); err != nil {
			return err
		}
		lg.Infof("%s: uploaded to gs://%s", name, *uploadTo)
	}
	return nil
}

// replay plays the whole timeline, reporting whenever the highest
// advisory tier on the display changes.
func replay(engine *traffic.Engine, provider *timeline.Provider, cfg *traffic.Config, lg *log.Logger) {
	interval := time.Duration(cfg.UpdateIntervalMs) * time.Millisecond
	player := timeline.NewPlayer(engine, provider.Start(), provider.End(), interval)

	last := traffic.LevelOther
	player.Callback = func(t time.Time, cmds []traffic.RenderCommand, ownship bool) {
		if !ownship {
			return
		}
		top := traffic.LevelOther
		for _, cmd := range cmds {
			if cmd.Level > top {
				top = cmd.Level
			}
		}
		if top != last {
			fmt.Printf("%s: %s (%d targets)\n", t.Format(time.RFC3339), top, len(cmds))
			last = top
		}
	}

	player.Play()
	if err := player.Run(context.Background()); err != nil {
		lg.Errorf("replay: %v", err)
	}
}
