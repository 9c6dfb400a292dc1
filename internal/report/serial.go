package report

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the console UART speed.
const DefaultBaudRate = 115200

// SerialSink writes report lines to a serial port.
type SerialSink struct {
	*WriterSink
	port serial.Port
}

// OpenSerial opens the named port at baud (8N1).
func OpenSerial(name string, baud int) (*SerialSink, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return &SerialSink{WriterSink: NewWriterSink(port), port: port}, nil
}

// Close closes the port.
func (s *SerialSink) Close() error {
	return s.port.Close()
}
