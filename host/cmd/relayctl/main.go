// relayctl drives a relayio board from a Linux host: one-shot commands,
// status polls, an interactive console, a live view and the board's debug
// UART.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
