package config

import (
	"errors"
	"flag"
	"fmt"
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

// parseFlags parses configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-env application environment (development, staging, production)
//	-debug enable debug logging
//	-version application version
//	-d database DSN
//	-db-driver database driver (postgres, sqlite)
//	-c/-config json file path with configs
//	-token-header custom token header name
//	-audit-logger audit logger name
//	-api-prefix audited path prefix
//	-request-timeout request timeout (e.g., "30s", "1m")
func parseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress NetAddress
	var environment, version string
	var debug bool
	var databaseDSN, databaseDriver string
	var jsonConfigPath string
	var tokenHeader string
	var auditLogger, apiPrefix string
	var requestTimeout time.Duration

	fs := flag.NewFlagSet("go-rest-common", flag.ContinueOnError)
	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&environment, "env", "", "Application environment")
	fs.BoolVar(&debug, "debug", false, "Enable debug logging")
	fs.StringVar(&version, "version", "", "Application version")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&databaseDriver, "db-driver", "", "Database driver")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&tokenHeader, "token-header", "", "Custom token header name")
	fs.StringVar(&auditLogger, "audit-logger", "", "Audit logger name")
	fs.StringVar(&apiPrefix, "api-prefix", "", "Audited path prefix")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			Environment: environment,
			Debug:       debug,
			Version:     version,
		},
		Auth: Auth{
			TokenHeaderName: tokenHeader,
		},
		Audit: Audit{
			LoggerName: auditLogger,
			APIPrefix:  apiPrefix,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
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
