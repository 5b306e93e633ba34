package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"relayio/host/mcu"
)

var sendCmd = &cobra.Command{
	Use:   "send <command...>",
	Short: "Send one command and print the board's status line",
	Long: `Send a command to the board, wait for it to settle and print the status
line it returns, with the rectifier bits grouped by four.

Words are joined and spaces removed, so "relay c on" sends "relaycon".

Commands:
  relay{c..h}{on|off}  rgb{1..3}{on|off}  ac{1|2}{on|off}  allon  alloff`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the status line without sending a command",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	m, err := connect()
	if err != nil {
		return err
	}
	defer m.Close()

	resp, err := m.Send(strings.Join(args, " "))
	if err != nil {
		return err
	}

	mcu.PrintResponse(os.Stdout, resp)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, err := connect()
	if err != nil {
		return err
	}
	defer m.Close()

	resp, err := m.Poll()
	if err != nil {
		return err
	}
	mcu.PrintResponse(os.Stdout, resp)

	s, err := resp.Status()
	if err != nil {
		return err
	}
	mcu.PrintStatus(os.Stdout, s)
	return nil
}
