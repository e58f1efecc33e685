package dump

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	serial "github.com/tarm/goserial"

	"github.com/odrisci/gnss-sdr/observables"
)

// StreamSink mirrors every epoch, in the same binary field layout Sink
// writes to disk, out over a live serial connection — adapted from the
// teacher's SerialComm.OpenSerial (src/stream.go), which opens a
// goserial port the same way for RTCM/NMEA streaming. Where the teacher
// pairs the serial port with an optional TCP relay, StreamSink instead
// pairs it with the same epoch data Sink persists, so a downstream monitor
// sees the identical observable stream that lands in the dump file.
type StreamSink struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
}

// OpenStreamSink opens portName (e.g. "/dev/ttyUSB0") at baud for live
// epoch mirroring.
func OpenStreamSink(portName string, baud int) (*StreamSink, error) {
	cfg := &serial.Config{Name: portName, Baud: baud}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("dump: opening serial port %q: %w", portName, err)
	}
	return &StreamSink{port: port}, nil
}

// WriteEpoch writes the same fieldsPerChannel-float64-per-channel layout
// Sink uses, so a live listener and the on-disk dump stay bit-compatible.
func (s *StreamSink) WriteEpoch(epoch observables.Epoch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [8]byte
	writeFloat := func(v float64) error {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, err := s.port.Write(buf[:])
		return err
	}

	for _, m := range epoch.Measurements {
		flag := 0.0
		if m.ValidPseudorange {
			flag = 1.0
		}
		values := [fieldsPerChannel]float64{
			m.RxTime.TimeOfWeek().AsSeconds(),
			m.TowMs,
			m.CarrierDopplerHz,
			m.CarrierPhaseCyc,
			m.PseudorangeM,
			float64(m.PRN),
			flag,
		}
		for _, v := range values {
			if err := writeFloat(v); err != nil {
				return fmt.Errorf("dump: serial write: %w", err)
			}
		}
	}
	return nil
}

// Close closes the underlying serial port.
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
