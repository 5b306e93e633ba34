package core

import "relayio/protocol"

// Board maps every logical channel to a GPIO pin
type Board struct {
	Relays     [protocol.RelayCount]GPIOPin     // C..H
	Indicators [protocol.IndicatorCount]GPIOPin // RGB 1..3
	Contactors [protocol.ContactorCount]GPIOPin // AC 1..2
	Rectifiers [protocol.RectifierCount]GPIOPin // Physical lines 1..15
}

// Configure sets every output low and every rectifier line as an input
func (b *Board) Configure(gpio GPIODriver) error {
	outputs := make([]GPIOPin, 0, protocol.RelayCount+protocol.IndicatorCount+protocol.ContactorCount)
	outputs = append(outputs, b.Relays[:]...)
	outputs = append(outputs, b.Indicators[:]...)
	outputs = append(outputs, b.Contactors[:]...)

	for _, pin := range outputs {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		if err := gpio.SetPin(pin, false); err != nil {
			return err
		}
	}

	for _, pin := range b.Rectifiers {
		if err := gpio.ConfigureInput(pin); err != nil {
			return err
		}
	}

	return nil
}
