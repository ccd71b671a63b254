// Package main provides the entry point for the Image Annotator application.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"image-annotator/internal/app"
	"image-annotator/internal/config"
	"image-annotator/internal/editor"
	"image-annotator/internal/logging"
	"image-annotator/internal/version"
	"image-annotator/ui/mainwindow"
	"image-annotator/ui/prefs"
)

const appID = "io.github.image-annotator"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the TOML config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Failed to load config %s: %v", *configPath, err)
		cfg = config.Default()
	}
	setupLogging(cfg)
	logging.Logger().Info("starting", "version", version.String(), "config", *configPath)

	opts := editor.DefaultOptions()
	opts.Defaults = cfg.Settings()
	opts.Zoom = cfg.ZoomLimits()
	session := editor.NewSession(opts)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{})

	win := mainwindow.New(fyneApp, session, cfg, prefs.Load())

	// An image path on the command line is opened at startup.
	if path := flag.Arg(0); path != "" {
		win.OpenFile(path)
	}

	win.ShowAndRun()
}

// setupLogging installs a text handler on stderr at the configured level.
// Level "off" keeps the silent default.
func setupLogging(cfg config.Config) {
	level, on := cfg.LogLevel()
	if !on {
		return
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logging.SetLogger(slog.New(handler))
}
