package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"relayio/host/serial"
)

var (
	monitorDevice string
	monitorBaud   int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream the board's debug UART",
	Long: `Print every line the board writes to its debug UART: received commands,
rejected commands and bus errors. Press Ctrl+C to exit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorDevice, "device", "d", "", "Serial device (overrides monitor.device)")
	monitorCmd.Flags().IntVarP(&monitorBaud, "baud", "b", 0, "Baud rate (overrides monitor.baud)")
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(portsCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	portCfg := serial.DefaultConfig(cfg.Monitor.Device)
	portCfg.Baud = cfg.Monitor.Baud
	if monitorDevice != "" {
		portCfg.Device = monitorDevice
	}
	if monitorBaud > 0 {
		portCfg.Baud = monitorBaud
	}

	port, err := serial.Open(portCfg)
	if err != nil {
		return err
	}
	defer port.Close()

	log.Info().Str("device", portCfg.Device).Int("baud", portCfg.Baud).Msg("monitoring debug UART")

	return serial.Monitor(port, func(line string) {
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), line)
	})
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
