// Package dump writes ObservablesEngine epochs to the binary dump format and
// optional live-mirror stream described in spec.md §6.
package dump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/odrisci/gnss-sdr/observables"
)

// fieldsPerChannel is the number of IEEE-754 float64 fields written per
// channel per epoch: rx_time_s, tow_ms, doppler_hz, phase_cycles,
// pseudorange_m, PRN, flag_valid_pseudorange (spec.md §6). The teacher's
// domain source additionally writes a Tracking_sample_counter field (8 per
// channel); we follow spec.md's explicit 7-field contract instead and log
// the TrackingSampleCounter only through the engine's in-memory Epoch, not
// to disk — see DESIGN.md for the rationale.
const fieldsPerChannel = 7

// Sink writes epochs to a flat binary file: channel-major, little-endian
// float64s, no header or footer, one fixed-width record block per epoch.
type Sink struct {
	mu  sync.Mutex
	w   *bufio.Writer
	f   *os.File
}

// NewSink opens (truncating) filename for binary epoch dumping.
func NewSink(filename string) (*Sink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("dump: opening %q: %w", filename, err)
	}
	return &Sink{w: bufio.NewWriter(f), f: f}, nil
}

// WriteEpoch appends one epoch's channels to the dump file, in the order
// they appear in epoch.Measurements.
func (s *Sink) WriteEpoch(epoch observables.Epoch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [8]byte
	writeFloat := func(v float64) error {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, err := s.w.Write(buf[:])
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
				return fmt.Errorf("dump: write: %w", err)
			}
		}
	}
	return nil
}

// Flush forces any buffered epoch data out to the underlying file.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes and closes the dump file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
