package config

import (
	"fmt"
	"net/url"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// LogPath is the client log file location.
	LogPath string
	// Version is the application version string.
	Version string
}

// ClientRemote holds network settings used by the remote store adapter and
// the connectivity monitor.
type ClientRemote struct {
	// BaseURL is the HTTP base URL of the remote CRUD backend.
	BaseURL string
	// RequestTimeout is the per-request timeout for outbound remote calls.
	RequestTimeout time.Duration
	// ProbeAddress is the host:port dialled by the connectivity probe.
	ProbeAddress string
	// ProbeInterval is how often the connectivity probe runs.
	ProbeInterval time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync job runs.
	SyncInterval time.Duration
	// PendingPollInterval defines how often the pending-count poller runs.
	PendingPollInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Remote contains remote backend addresses and timeouts.
	Remote ClientRemote
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, applies defaults, and validates the
// resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogPath: cfg.App.LogPath,
			Version: cfg.App.Version,
		},
		Remote: ClientRemote{
			BaseURL:        cfg.Remote.BaseURL,
			RequestTimeout: cfg.Remote.RequestTimeout,
			ProbeAddress:   cfg.Remote.ProbeAddress,
			ProbeInterval:  cfg.Remote.ProbeInterval,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:        cfg.Workers.SyncInterval,
			PendingPollInterval: cfg.Workers.PendingPollInterval,
		},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

// applyDefaults fills optional settings that have sane defaults so a minimal
// config (base URL + database path) is enough to run the client.
func (cfg *ClientConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = 15 * time.Second
	}
	if cfg.Remote.ProbeInterval <= 0 {
		cfg.Remote.ProbeInterval = 5 * time.Second
	}
	if cfg.Remote.ProbeAddress == "" {
		cfg.Remote.ProbeAddress = probeAddressFromURL(cfg.Remote.BaseURL)
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = 5 * time.Minute
	}
	if cfg.Workers.PendingPollInterval <= 0 {
		cfg.Workers.PendingPollInterval = 5 * time.Second
	}
}

// probeAddressFromURL derives a dialable host:port from the backend base URL.
func probeAddressFromURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}

	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return u.Hostname() + ":443"
	}
	return u.Hostname() + ":80"
}
