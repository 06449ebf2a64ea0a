package main

import (
	"fmt"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/client"
	"github.com/ademidova/go-stock-keeper/internal/config"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/netmon"
	"github.com/ademidova/go-stock-keeper/internal/service"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Println("error getting configs:", err)
		return
	}

	log := logger.NewClientLogger("stock-keeper-client", cfg.App.LogPath)

	remote := adapter.NewHTTPRemoteStore(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	})

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	monitor := netmon.NewMonitor(
		netmon.TCPProbe(cfg.Remote.ProbeAddress, cfg.Remote.RequestTimeout),
		cfg.Remote.ProbeInterval,
		log,
	)

	services := service.NewClientServices(storages, remote, monitor, cfg.Remote.RequestTimeout, log)
	ui := tui.New(services)

	app := client.NewApp(cfg, storages, services, monitor, ui, log)
	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
