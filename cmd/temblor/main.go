package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/linuxmatters/temblor/internal/cli"
	"github.com/linuxmatters/temblor/internal/config"
	"github.com/linuxmatters/temblor/internal/logger"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config     kong.ConfigFlag `help:"Load flag defaults from a JSON file" placeholder:"FILE"`
	LogLevel   string          `help:"Log level: debug, info, warn or error" default:"warn" env:"TEMBLOR_LOG_LEVEL" placeholder:"LEVEL"`
	NoProgress bool            `help:"Disable the progress display" env:"TEMBLOR_NO_PROGRESS"`
	Workers    int             `help:"Files scanned in parallel" default:"${workers}" env:"TEMBLOR_WORKERS"`

	log logger.Logger
}

var CLI struct {
	Globals

	Scan    ScanCmd    `cmd:"" help:"List the traces found in waveform files"`
	Plan    PlanCmd    `cmd:"" help:"Show the read requests that would be executed"`
	Read    ReadCmd    `cmd:"" help:"Assemble time series and optionally export them"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

func main() {
	if err := loadDotEnv(config.DotEnvFile); err != nil {
		cli.PrintWarning(err.Error())
	}

	ctx := kong.Parse(&CLI,
		kong.Name("temblor"),
		kong.Description(cli.AppDescription),
		vars(),
		kong.Configuration(kong.JSON, ".temblor.json", "~/.config/temblor/config.json"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	CLI.Globals.log = logger.NewLogger(CLI.LogLevel)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix) {
			CLI.Globals.log.Debugf("environment: %s", kv)
		}
	}

	if err := ctx.Run(&CLI.Globals); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// vars exposes defaults from the config package to flag tags
func vars() kong.Vars {
	return kong.Vars{
		"version":    version,
		"workers":    fmt.Sprint(config.ScanWorkers),
		"overlap":    fmt.Sprint(config.OverlapTolerance),
		"joingap":    fmt.Sprint(config.JoinGapTolerance),
		"padding":    fmt.Sprint(config.EdgePadding),
		"decimation": fmt.Sprint(config.Decimation),
		"vp":         fmt.Sprint(config.VelocityP),
		"vs":         fmt.Sprint(config.VelocityS),
		"bitdepth":   fmt.Sprint(config.WAVBitDepth),
		"fftsize":    fmt.Sprint(config.FFTSize),
		"peaks":      fmt.Sprint(config.NumPeaks),
	}
}

// loadDotEnv reads path into the environment when it exists
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	cli.PrintVersion(version)
	return nil
}
