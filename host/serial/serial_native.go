package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// NativePort wraps the tarm/serial implementation
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens a native serial port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{
		port: port,
		cfg:  cfg,
	}, nil
}

// Read reads data from the serial port. A read timeout with no data
// surfaces as io.EOF from the driver; it is retried so readers only see
// real errors.
func (p *NativePort) Read(b []byte) (int, error) {
	for {
		n, err := p.port.Read(b)
		if n == 0 && err == io.EOF {
			continue
		}
		return n, err
	}
}

// Write writes data to the serial port
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input so replies line up with the next command
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
