package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/statpane/statpane/internal/config"
	"github.com/statpane/statpane/internal/monitor"
	"github.com/statpane/statpane/internal/nvsmi"
	"github.com/statpane/statpane/internal/priority"
	"github.com/statpane/statpane/internal/sampler"
	"github.com/statpane/statpane/internal/widget"
)

var BUILD_VERSION = "dev"

var intervalFlag = flag.Duration("interval", 0, "override the poll interval")
var gpuToolFlag = flag.String("gpu-tool", "", "explicit path to the GPU query tool")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of statpane:")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "statpane: %v\n", err)
		os.Exit(1)
	}
	if *intervalFlag > 0 {
		cfg.PollInterval = *intervalFlag
	}
	if *gpuToolFlag != "" {
		cfg.GPUToolPath = *gpuToolFlag
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statpane: initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()

	logger.Info("-------- new statpane session --------",
		zap.String("version", BUILD_VERSION),
		zap.Duration("interval", cfg.PollInterval),
	)

	if cfg.LowerPriority {
		if err := priority.Lower(); err != nil {
			logger.Warn("failed to lower process priority", zap.Error(err))
		}
	}

	mon := monitor.New(
		sampler.NewCPUSampler(),
		sampler.NewRAMSampler(),
		nvsmi.NewProvider(logger, cfg.GPUToolPath),
		cfg.GPUTimeout,
		logger,
	)

	program := tea.NewProgram(
		widget.New(mon, cfg.PollInterval, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		logger.Error("widget terminated", zap.Error(err))
		fmt.Fprintf(os.Stderr, "statpane: %v\n", err)
		os.Exit(1)
	}
}

func initializeLogger(cfg config.Config) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, err
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Log to a file; the widget owns the terminal.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = level
	loggerConfig.OutputPaths = []string{cfg.LogFile}
	return loggerConfig.Build()
}
