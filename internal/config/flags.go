// SPDX-License-Identifier: Apache-2.0

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
//	-a dev server address in format [host]:[port]
//	-r/-remote base URL of the remote record store
//	-d local database path (SQLite file)
//	-c/-config json file path with configs
//	-request-timeout remote request timeout (e.g., "15s")
//	-quiet-period write scheduler debounce interval (e.g., "1500ms")
//	-refresh-interval periodic list refresh interval (e.g., "5m")
//	-geocode-url geocoding proxy base URL
//	-weather-url weather proxy base URL
func ParseFlags() *StructuredConfig {
	var devServerAddress NetAddress
	var remoteBaseURL string
	var databaseDSN string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var quietPeriod time.Duration
	var refreshInterval time.Duration
	var geocodeBaseURL string
	var weatherBaseURL string

	flag.Var(&devServerAddress, "a", "Net address host:port")
	flag.StringVar(&remoteBaseURL, "r", "", "Remote record store base URL")
	flag.StringVar(&remoteBaseURL, "remote", "", "Remote record store base URL (alias)")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 15s)")
	flag.DurationVar(&quietPeriod, "quiet-period", 0, "Write debounce quiet period (e.g., 1500ms)")
	flag.DurationVar(&refreshInterval, "refresh-interval", 0, "Periodic list refresh interval (e.g., 5m)")
	flag.StringVar(&geocodeBaseURL, "geocode-url", "", "Geocoding proxy base URL")
	flag.StringVar(&weatherBaseURL, "weather-url", "", "Weather proxy base URL")

	flag.Parse()

	return &StructuredConfig{
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Engine: Engine{
			QuietPeriod: quietPeriod,
		},
		Enrich: Enrich{
			GeocodeBaseURL: geocodeBaseURL,
			WeatherBaseURL: weatherBaseURL,
		},
		Workers: Workers{
			RefreshInterval: refreshInterval,
		},
		DevServer: DevServer{
			HTTPAddress: devServerAddress.String(),
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
