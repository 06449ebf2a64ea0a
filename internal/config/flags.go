package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-r remote backend base URL
//	-d local SQLite database path
//	-probe-address connectivity probe address in format [host]:[port]
//	-probe-interval connectivity probe interval (e.g., "5s")
//	-request-timeout remote request timeout (e.g., "30s", "1m")
//	-sync-interval background sync interval (e.g., "5m")
//	-pending-poll-interval pending-count poll interval (e.g., "5s")
//	-log-path client log file path
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var probeAddress NetAddress
	var remoteBaseURL string
	var databaseDSN string
	var jsonConfigPath string
	var logPath string
	var probeInterval time.Duration
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var pendingPollInterval time.Duration

	flag.StringVar(&remoteBaseURL, "r", "", "Remote backend base URL")
	flag.StringVar(&databaseDSN, "d", "", "Local SQLite database path")
	flag.Var(&probeAddress, "probe-address", "Connectivity probe address host:port")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 5s)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	flag.DurationVar(&pendingPollInterval, "pending-poll-interval", 0, "Pending-count poll interval (e.g., 5s)")
	flag.StringVar(&logPath, "log-path", "", "Client log file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			LogPath: logPath,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			RequestTimeout: requestTimeout,
			ProbeAddress:   probeAddress.String(),
			ProbeInterval:  probeInterval,
		},
		Workers: Workers{
			SyncInterval:        syncInterval,
			PendingPollInterval: pendingPollInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
