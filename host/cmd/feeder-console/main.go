package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"petfeeder/host/mcu"
	"petfeeder/host/serial"
)

var (
	device = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", serial.DefaultBaud, "Baud rate")
	list   = flag.Bool("list", false, "List serial ports and exit")
)

func main() {
	flag.Parse()

	if *list {
		if err := printPorts(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Pet Feeder Console")
	fmt.Println("==================")
	fmt.Println()

	mcuConn := mcu.NewMCU()

	fmt.Printf("Connecting to feeder on %s...\n", *device)
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	if err := mcuConn.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer mcuConn.Close()

	fmt.Println("Connected successfully!")

	// Replies and unsolicited notices arrive on the same stream
	go func() {
		for line := range mcuConn.Lines() {
			fmt.Printf("\r%s\n> ", line)
		}
	}()

	fmt.Println("Enter feeder commands ('.help' for console commands, '.quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case ".quit", ".exit", ".q":
			fmt.Println("Goodbye!")
			return

		case ".help":
			printHelp()

		case ".ports":
			if err := printPorts(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			if err := mcuConn.SendLine(line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nConsole commands:")
	fmt.Println("  .help          - Show this help message")
	fmt.Println("  .ports         - List serial ports")
	fmt.Println("  .quit/.exit/.q - Exit the program")
	fmt.Println("\nAnything else is sent to the feeder; try 'help'.")
	fmt.Println()
}

func printPorts() error {
	ports, err := serial.Ports()
	if err != nil {
		return fmt.Errorf("failed to list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.Description != "" {
			fmt.Printf("%-20s %s\n", p.Name, p.Description)
		} else {
			fmt.Println(p.Name)
		}
	}
	return nil
}
