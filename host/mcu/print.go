package mcu

import (
	"fmt"
	"io"

	"relayio/controller"
	"relayio/protocol"
)

// PrintResponse prints a command response the way the serial console does
func PrintResponse(w io.Writer, resp controller.Response) {
	fmt.Fprintf(w, "Response: %s\n", resp.Raw)
	if resp.Found {
		fmt.Fprintf(w, "Rectifiers: %s\n", resp.Formatted())
	} else {
		fmt.Fprintln(w, "Rectifiers: not found")
	}
}

// PrintStatus prints every channel of a decoded status line
func PrintStatus(w io.Writer, s protocol.Status) {
	fmt.Fprintln(w, "\n=== Board Status ===")
	fmt.Fprintf(w, "Relay byte: 0x%02X\n", s.Relays)

	fmt.Fprintln(w, "\nOutputs:")
	for _, ch := range protocol.Channels {
		fmt.Fprintf(w, "  %-8s %s\n", ch.Name, onOff(ch.State(&s)))
	}

	fmt.Fprintln(w, "\nRectifiers:")
	for i, level := range s.Rectifiers {
		fmt.Fprintf(w, "  %2d: %d\n", i+1, bit(level))
	}
	fmt.Fprintln(w)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "off"
}

func bit(on bool) int {
	if on {
		return 1
	}
	return 0
}
