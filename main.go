package main

import (
	"os"

	"MatchLens/config"
	"MatchLens/hotkey"
	"MatchLens/ui"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
)

const appID = "io.matchlens.overlay"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	cfg.ConfigureLogging()

	fyneApp := app.NewWithID(appID)
	fyneApp.Settings().SetTheme(ui.NewOverlayTheme())

	a, err := NewAppManager(cfg, fyneApp, hotkey.NewOSRegistrar())
	if err != nil {
		logrus.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	w := a.window.Window
	w.SetMaster()
	a.Start()

	w.ShowAndRun()
	a.Shutdown()
}
