// factory.go
//
// relayio driver factory for reef-pi.
//
// The board is a peripheral at a fixed I2C address that accepts ASCII
// commands and answers with a status line. reef-pi sees it as 11 digital
// outputs (relays C..H, RGB 1..3, AC 1..2) and 15 digital inputs
// (rectifier lines 1..15).
package reefpi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reef-pi/hal"
	"github.com/reef-pi/rpi/i2c"
	"github.com/rs/zerolog/log"

	"relayio/controller"
	"relayio/host/i2cdev"
	"relayio/protocol"
)

const (
	paramAddress = "Address"  // string, e.g. "0x27"
	paramSettle  = "SettleMs" // string, milliseconds
	paramDebug   = "Debug"    // bool
)

type factory struct {
	meta       hal.Metadata
	parameters []hal.ConfigParameter
}

var (
	f    *factory
	once sync.Once
)

func Factory() hal.DriverFactory {
	once.Do(func() {
		f = &factory{
			meta: hal.Metadata{
				Name:        "relayio",
				Description: "relayio I2C relay board: relays C-H, RGB 1-3, AC 1-2 outputs and 15 rectifier inputs",
				Capabilities: []hal.Capability{
					hal.DigitalInput,
					hal.DigitalOutput,
				},
			},
			parameters: []hal.ConfigParameter{
				{Name: paramAddress, Type: hal.String, Order: 0, Default: "0x27"},
				{Name: paramSettle, Type: hal.String, Order: 1, Default: "20"},
				{Name: paramDebug, Type: hal.Boolean, Order: 2, Default: false},
			},
		}
	})
	return f
}

func (f *factory) Metadata() hal.Metadata               { return f.meta }
func (f *factory) GetParameters() []hal.ConfigParameter { return f.parameters }

// parseAddr accepts "0x27" style hex or "39" style decimal
func parseAddr(s string) (byte, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		return byte(v), err
	}
	v, err := strconv.ParseUint(s, 10, 8)
	return byte(v), err
}

func parseSettle(params map[string]interface{}) (time.Duration, error) {
	s, _ := params[paramSettle].(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return protocol.SettleDelay, nil
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("must be a non-negative number of milliseconds")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (f *factory) ValidateParameters(params map[string]interface{}) (bool, map[string][]string) {
	errs := make(map[string][]string)

	addrStr, _ := params[paramAddress].(string)
	addrStr = strings.TrimSpace(addrStr)
	if addrStr == "" {
		errs[paramAddress] = append(errs[paramAddress], "is required (e.g. 0x27)")
	} else {
		addr, err := parseAddr(addrStr)
		if err != nil {
			errs[paramAddress] = append(errs[paramAddress], "must be a valid I2C address like 0x27")
		} else if addr > 127 {
			errs[paramAddress] = append(errs[paramAddress], "must be a 7-bit address (0..127)")
		}
	}

	if _, err := parseSettle(params); err != nil {
		errs[paramSettle] = append(errs[paramSettle], err.Error())
	}

	if v, ok := params[paramDebug]; ok {
		if _, ok := v.(bool); !ok {
			errs[paramDebug] = append(errs[paramDebug], "must be boolean")
		}
	}

	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (f *factory) NewDriver(params map[string]interface{}, bus interface{}) (hal.Driver, error) {
	if ok, failures := f.ValidateParameters(params); !ok {
		return nil, fmt.Errorf("%s", hal.ToErrorString(failures))
	}

	i2cBus, ok := bus.(i2c.Bus)
	if !ok {
		return nil, fmt.Errorf("relayio: expected i2c.Bus, got %T", bus)
	}

	addrStr, _ := params[paramAddress].(string)
	addr, err := parseAddr(addrStr)
	if err != nil {
		return nil, fmt.Errorf("relayio: invalid Address %q: %w", addrStr, err)
	}

	settle, _ := parseSettle(params)
	debug, _ := params[paramDebug].(bool)

	adapter := i2cdev.New(i2cBus)
	client := controller.New(adapter,
		controller.WithAddress(uint16(addr)),
		controller.WithSettleDelay(settle))

	d := newDriver(client, adapter, f.meta, debug)

	// Learn the current outputs so LastState is right from the start
	if err := d.refresh(); err != nil {
		return nil, fmt.Errorf("relayio addr=0x%02X initial status read failed: %w", addr, err)
	}

	if d.debug {
		log.Debug().Str("addr", fmt.Sprintf("0x%02X", addr)).Dur("settle", settle).Msg("relayio driver ready")
	}

	return d, nil
}
