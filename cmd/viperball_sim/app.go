package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/viperball/matchsim/internal/batch"
	"github.com/viperball/matchsim/internal/cache"
	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/internal/influx"
	"github.com/viperball/matchsim/internal/logging"
	intOtel "github.com/viperball/matchsim/internal/otel"

	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// shutdownTimeout bounds the OTel flush on exit.
const shutdownTimeout = 5 * time.Second

// app holds the services shared by every subcommand.
type app struct {
	start time.Time

	slog      *logging.SlogManager
	logger    *slog.Logger
	logFile   *os.File
	logWriter io.Writer
	logLevel  string

	otel     *intOtel.Provider
	influx   *influx.Manager
	batchCtx *batch.Context
	rosters  *cache.RosterCache
}

// newApp loads the configuration and brings up logging, telemetry and
// metrics. Anything that fails to come up is logged and left out.
func newApp(configDir string, stderr io.Writer) *app {
	a := &app{
		start:    time.Now(),
		slog:     logging.NewSlogManager(),
		batchCtx: batch.NewContext(),
		rosters:  cache.NewRosterCache(),
	}
	a.slog.SetContext(logging.BatchContext(a.batchCtx.BatchID))

	cfgErr := config.Load(configDir)
	a.logLevel = viper.GetString("logLevel")
	a.logWriter = stderr

	f, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName, a.start)
	if err == nil {
		a.logFile = f
		a.logWriter = io.MultiWriter(stderr, f)
	}
	a.slog.Setup(a.logWriter, a.logLevel, nil)
	a.logger = a.slog.Logger()

	if err != nil {
		a.logger.Warn("Failed to open log file, logging to stderr only", "error", err)
	}
	if cfgErr != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		a.logger.Info("Loaded config", "path", viper.ConfigFileUsed())
	}

	a.setupOTel()
	a.setupGraylog()
	a.setupInflux()

	a.logger.Debug("Started", "version", Version, "build", BuildDate)
	return a
}

func (a *app) setupOTel() {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}
	var w io.Writer
	if a.logFile != nil {
		w = a.logFile
	}
	p, err := intOtel.New(intOtel.ConfigFrom(otelCfg, Version, w))
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
		return
	}
	a.otel = p
	if otelCfg.Endpoint != "" {
		a.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	} else {
		a.logger.Info("OTel provider initialized")
	}

	// Re-setup logging with OTel
	var provider *sdklog.LoggerProvider = p.LoggerProvider()
	a.slog.Setup(a.logWriter, a.logLevel, provider)
	a.logger = a.slog.Logger()
}

func (a *app) setupGraylog() {
	gl := config.GetGraylogConfig()
	if !gl.Enabled {
		return
	}
	if err := a.slog.AddGELF(gl.Address); err != nil {
		a.logger.Warn("Failed to enable GELF logging", "error", err, "address", gl.Address)
		return
	}
	a.logger = a.slog.Logger()
}

func (a *app) setupInflux() {
	influxCfg := config.GetInfluxConfig()
	if !influxCfg.Enabled {
		return
	}
	backupPath := filepath.Join(
		viper.GetString("logsDir"),
		fmt.Sprintf("%s_influx_%s.lp.gz", AppName, a.start.UTC().Format("20060102_150405")),
	)
	m := influx.NewManager(influxCfg, logging.NewZerolog(a.logWriter, a.logLevel, "influx"), backupPath)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			a.logger.Warn("InfluxDB unavailable, metrics disabled", "error", err)
		}
		return
	}
	a.influx = m
}

// close releases everything newApp opened, in reverse order.
func (a *app) close() {
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Warn("Error closing InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("Error shutting down OTel", "error", err)
		}
	}
	_ = a.slog.Flush(ctx)

	if a.logFile != nil {
		a.logger.Debug("Closing log file", "duration", time.Since(a.start))
		_ = a.logFile.Close()
	}
}
