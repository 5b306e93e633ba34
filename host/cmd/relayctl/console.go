package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"relayio/controller"
	"relayio/core"
	"relayio/host/mcu"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive command console",
	Long: `Read commands from stdin, one per line, and print each response.

Type 'help' for the command list and 'quit' to exit. The prompt is shown
only when stdin is a terminal, so the console also works in pipelines.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the board's command vocabulary in match order",
	Long: `List every command the board accepts, in the order the board checks them.

The board matches by substring and the first match wins, so a line holding
two commands runs the one listed first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(core.DefaultCommands().Dictionary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(commandsCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	m, err := connect()
	if err != nil {
		return err
	}
	defer m.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("relayctl %s - board at 0x%02X\n", rootCmd.Version, cfg.Bus.Address)
		fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	}

	return console(os.Stdin, os.Stdout, m, interactive)
}

// console runs the command loop until quit or end of input
func console(in io.Reader, out io.Writer, m *mcu.MCU, prompt bool) error {
	scanner := bufio.NewScanner(in)

	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch controller.Normalize(line) {
		case "quit", "exit", "q":
			return nil

		case "help", "?":
			printConsoleHelp(out)
			continue
		}

		resp, err := m.Send(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		mcu.PrintResponse(out, resp)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func printConsoleHelp(out io.Writer) {
	fmt.Fprintln(out, "\nBoard commands (case and spaces ignored):")
	for _, r := range core.DefaultCommands().Rules() {
		fmt.Fprintf(out, "  %s\n", r.Token)
	}
	fmt.Fprintln(out, "\nConsole commands:")
	fmt.Fprintln(out, "  help           - Show this help message")
	fmt.Fprintln(out, "  quit/exit/q    - Exit the console")
	fmt.Fprintln(out)
}
