package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"relayio/core"
	"relayio/host/config"
	"relayio/host/mcu"
	"relayio/protocol"
)

var (
	cfgFile string
	busKind string
	address string
	verbose bool

	// cfg is loaded once flags are parsed
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "relayio relay board controller",
	Long: `relayctl - talk to a relayio I2C relay board.

The board switches six relays (C-H), three RGB indicators and two AC
contactors, and reports fifteen rectifier input lines in its status line.

Bus selection:
  i2cdev: the host's I2C bus (default)
  sim:    an in-process simulated board, for trying commands without hardware`,
	Version:           protocol.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&busKind, "bus", "", "Bus kind: i2cdev or sim")
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "", "Board I2C address (e.g. 0x27)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if busKind != "" {
		loaded.Bus.Kind = busKind
	}
	if address != "" {
		addr, err := strconv.ParseUint(address, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", address, err)
		}
		loaded.Bus.Address = uint16(addr)
	}

	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg = loaded
	return nil
}

// connect opens the configured board. A simulated board's debug lines go
// to the log.
func connect() (*mcu.MCU, error) {
	if cfg.Bus.Kind == config.BusSim {
		core.SetDebugWriter(func(s string) {
			log.Debug().Str("src", "board").Msg(s)
		})
		core.SetDebugEnabled(verbose)
	}

	m, err := mcu.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return m, nil
}
