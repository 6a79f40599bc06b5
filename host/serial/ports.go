package serial

import (
	"fmt"

	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port found on the host
type PortInfo struct {
	Name        string
	Description string
	USB         bool
}

// Ports returns the serial ports available on the host. USB ports carry
// their VID:PID and product name in the description.
func Ports() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil && len(details) > 0 {
		result := make([]PortInfo, 0, len(details))
		for _, d := range details {
			result = append(result, describe(d))
		}
		return result, nil
	}

	names, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	result := make([]PortInfo, 0, len(names))
	for _, name := range names {
		result = append(result, PortInfo{Name: name, Description: name})
	}
	return result, nil
}

func describe(d *enumerator.PortDetails) PortInfo {
	info := PortInfo{Name: d.Name, Description: d.Name, USB: d.IsUSB}
	if d.IsUSB {
		info.Description = fmt.Sprintf("%s [%s:%s]", d.Name, d.VID, d.PID)
		if d.Product != "" {
			info.Description += " " + d.Product
		}
	}
	return info
}
