//go:build rp2040 || rp2350

// Controller firmware: reads command lines from the USB console and forwards
// them to the relay board over I2C0.
package main

import (
	"machine"
	"relayio/controller"
	"time"
)

const lineMax = 128

func main() {
	// Configure machine.Serial (USB CDC on RP2040)
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}

	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.GPIO4,
		SCL:       machine.GPIO5,
	})
	if err != nil {
		writeLine("I2C setup failed: " + err.Error())
		return
	}

	client := controller.New(machine.I2C0)

	// Give the host a moment to open the port before the prompt
	time.Sleep(2 * time.Second)
	writeLine("relayio controller")
	writePrompt()

	var line [lineMax]byte
	n := 0
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		c, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}

		switch c {
		case '\r', '\n':
			if n == 0 {
				continue
			}
			machine.Serial.Write([]byte("\r\n"))
			handleLine(client, string(line[:n]))
			n = 0
			writePrompt()
		case 0x08, 0x7F:
			if n > 0 {
				n--
				machine.Serial.Write([]byte("\b \b"))
			}
		default:
			if n < len(line) {
				line[n] = c
				n++
				machine.Serial.WriteByte(c)
			}
		}
	}
}

func handleLine(client *controller.Client, text string) {
	cmd := controller.Normalize(text)
	if cmd == "" {
		return
	}

	var (
		resp controller.Response
		err  error
	)
	if cmd == "status" {
		resp, err = client.ReadStatus()
	} else {
		resp, err = client.SendCommand(cmd)
	}
	if err != nil {
		writeLine("I2C Error: " + err.Error())
		return
	}

	writeLine("Response: " + resp.Raw)
	if resp.Found {
		writeLine("Rectifiers: " + resp.Formatted())
	} else {
		writeLine("Rectifiers: not found")
	}
}

func writePrompt() {
	machine.Serial.Write([]byte("> "))
}

func writeLine(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}
