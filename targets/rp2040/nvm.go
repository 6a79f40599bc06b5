//go:build rp2040

package main

import (
	"encoding/binary"
	"time"

	"machine"

	"tinygo.org/x/drivers/at24cx"

	"petfeeder/core"
)

// eepromWriteCycle is the AT24Cxx internal write time
const eepromWriteCycle = 5 * time.Millisecond

// RPNVMDriver stores little-endian words in an AT24Cxx I2C EEPROM. Erased
// cells read 0xFF, so an unwritten word reads core.NVMErased.
type RPNVMDriver struct {
	eeprom at24cx.Device
	buf    [4]byte
}

// NewRPNVMDriver configures the I2C bus and the EEPROM
func NewRPNVMDriver(bus *machine.I2C, sda, scl machine.Pin) (*RPNVMDriver, error) {
	err := bus.Configure(machine.I2CConfig{
		Frequency: 400000,
		SDA:       sda,
		SCL:       scl,
	})
	if err != nil {
		return nil, err
	}
	d := &RPNVMDriver{eeprom: at24cx.New(bus)}
	d.eeprom.Configure(at24cx.Config{})
	return d, nil
}

func (d *RPNVMDriver) ReadWord(addr uint32) (uint32, error) {
	if _, err := d.eeprom.ReadAt(d.buf[:], int64(addr)*4); err != nil {
		return core.NVMErased, err
	}
	return binary.LittleEndian.Uint32(d.buf[:]), nil
}

func (d *RPNVMDriver) WriteWord(addr uint32, value uint32) error {
	binary.LittleEndian.PutUint32(d.buf[:], value)
	if _, err := d.eeprom.WriteAt(d.buf[:], int64(addr)*4); err != nil {
		return err
	}
	time.Sleep(eepromWriteCycle)
	return nil
}
