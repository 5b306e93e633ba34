package controller

import "strconv"

// Bus operations reported in I2CError
const (
	OpWrite = "write"
	OpRead  = "read"
)

// I2CError reports a failed bus transaction. The command cycle it belongs
// to was aborted.
type I2CError struct {
	Op   string
	Addr uint16
	Err  error
}

func (e *I2CError) Error() string {
	return "i2c " + e.Op + " 0x" + strconv.FormatUint(uint64(e.Addr), 16) + ": " + e.Err.Error()
}

func (e *I2CError) Unwrap() error {
	return e.Err
}
