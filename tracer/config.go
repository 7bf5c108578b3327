// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/gitter-badger/tapper/internal/log"
)

const defaultTTL = 30 * time.Second

// ProcessConfig is the process-wide configuration every trace actor is
// seeded from (spec.md §4.1's "process configuration" dependency): the
// local service identity, the default endpoint to stamp onto
// implicit annotations, the default idle TTL, and the reporter new
// traces report into unless a StartOption overrides it.
type ProcessConfig struct {
	ServiceName string
	IPv4        net.IP
	DefaultTTL  time.Duration
	Reporter    Reporter
}

// LoadProcessConfig builds a ProcessConfig from a .env file (if present,
// via godotenv, the same convention the rest of the example pack uses
// for process-local secrets and settings) layered under the process
// environment, falling back to sane local defaults for anything unset.
func LoadProcessConfig() *ProcessConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("tapper: failed to load .env: %v", err)
	}

	cfg := &ProcessConfig{
		ServiceName: getenv("TAPPER_SERVICE_NAME", defaultServiceName()),
		DefaultTTL:  getenvDuration("TAPPER_DEFAULT_TTL", defaultTTL),
		Reporter:    NopReporter{},
	}
	if ip := discoverLocalIPv4(); ip != nil {
		cfg.IPv4 = ip
	}
	return cfg
}

func defaultServiceName() string {
	if len(os.Args) == 0 {
		return "tapper"
	}
	return filepath.Base(os.Args[0])
}

// discoverLocalIPv4 returns this host's first non-loopback IPv4 address,
// or nil if none is found. There is no third-party library in the
// retrieved example pack for network interface enumeration; every repo
// that needs the local address uses net.InterfaceAddrs directly, so this
// stays on the standard library rather than inventing a dependency.
func discoverLocalIPv4() net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Warn("tapper: failed to enumerate local interfaces: %v", err)
		return nil
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("tapper: invalid duration in %s=%q, using default: %v", key, v, err)
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
