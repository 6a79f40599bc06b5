package mcu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"petfeeder/host/serial"
	"petfeeder/protocol"
)

// DefaultBufferSize is the number of reply lines buffered before dropping
const DefaultBufferSize = 64

// MCU is a line-oriented connection to the feeder's command console
type MCU struct {
	port serial.Port

	lines  chan string
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	connected bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{}
}

// Connect connects to the feeder via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	return m.Attach(port)
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.port = port
	m.lines = make(chan string, DefaultBufferSize)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.connected = true

	go m.readLines(m.ctx, port, m.lines)
	return nil
}

// Close closes the connection to the feeder
func (m *MCU) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.cancel()
	m.connected = false
	return m.port.Close()
}

// IsConnected returns whether the feeder is connected
func (m *MCU) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Lines returns the channel of lines received from the feeder. It is
// closed when the connection ends.
func (m *MCU) Lines() <-chan string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines
}

// SendLine sends one command line
func (m *MCU) SendLine(line string) error {
	line = strings.TrimSpace(line)
	if len(line) >= protocol.MaxChars {
		return fmt.Errorf("command longer than %d characters", protocol.MaxChars-1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return fmt.Errorf("not connected to feeder")
	}
	if _, err := io.WriteString(m.port, line+"\r"); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}
	return nil
}

// Query sends a command and collects reply lines until the feeder has been
// quiet for the given period
func (m *MCU) Query(line string, quiet time.Duration) ([]string, error) {
	lines := m.Lines()
	if lines == nil {
		return nil, fmt.Errorf("not connected to feeder")
	}
	// drop anything unsolicited that arrived before the command
	for drained := false; !drained; {
		select {
		case _, ok := <-lines:
			if !ok {
				return nil, io.EOF
			}
		default:
			drained = true
		}
	}

	if err := m.SendLine(line); err != nil {
		return nil, err
	}

	var replies []string
	timer := time.NewTimer(quiet)
	defer timer.Stop()
	for {
		select {
		case l, ok := <-lines:
			if !ok {
				return replies, io.EOF
			}
			replies = append(replies, l)
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(quiet)
		case <-timer.C:
			return replies, nil
		}
	}
}

// readLines reads reply lines until the port closes or ctx is cancelled
func (m *MCU) readLines(ctx context.Context, port io.Reader, out chan<- string) {
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return
		default:
			log.Printf("Reply buffer full, dropping %q", line)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Error reading from feeder: %v", err)
	}
}
