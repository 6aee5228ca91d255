// Package serialport connects the bridge to the voting device: it
// enumerates candidate serial ports, heuristically identifies the device
// by its USB chip signature, and exposes the opened port as a polled
// line stream.
package serialport

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// signatures are substrings that identify common Arduino-class USB-serial
// hardware in a port's name or product description.
var signatures = []string{
	"CH340", // common clone chip (Nano, Uno clones)
	"CH341",
	"FT232", // FTDI (some Nanos, Pro Minis)
	"FT231",
	"Arduino",
	"USB Serial",
	"USB-SERIAL",
	"ACM", // Linux CDC-ACM devices
	"ttyUSB",
	"ttyACM",
}

// PortInfo describes one serial port found on the host.
type PortInfo struct {
	Device      string `json:"device"`
	Description string `json:"description,omitempty"`
	Likely      bool   `json:"likely"` // matches a known device signature
}

// List returns every serial port on the host, flagging the ones whose
// name or description matches a known device signature.
func List() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Device:      d.Name,
			Description: d.Product,
			Likely:      matchesSignature(d.Name, d.Product),
		})
	}
	return ports, nil
}

// Detect returns only the ports that look like the voting device.
func Detect() ([]PortInfo, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}
	var likely []PortInfo
	for _, p := range all {
		if p.Likely {
			likely = append(likely, p)
		}
	}
	return likely, nil
}

// matchesSignature reports whether a port's device name or description
// contains any known signature, case-insensitively.
func matchesSignature(device, description string) bool {
	dev := strings.ToUpper(device)
	desc := strings.ToUpper(description)
	for _, sig := range signatures {
		s := strings.ToUpper(sig)
		if strings.Contains(dev, s) || strings.Contains(desc, s) {
			return true
		}
	}
	return false
}
