package observables

import "github.com/odrisci/gnss-sdr/gnsstime"

// Signal identifies a carrier/band within a constellation (e.g. GPS L1 C/A,
// Galileo E5a). The letter matches the RINEX-style band code used throughout
// the teacher's observation-code handling.
type Signal byte

const (
	SignalL1 Signal = '1'
	SignalL2 Signal = '2'
	SignalL5 Signal = '5'
	SignalE1 Signal = '1'
	SignalE5a Signal = '5'
	SignalE5b Signal = '7'
	SignalE5  Signal = '8'
	SignalE6  Signal = '6'
	SignalB1  Signal = '2'
	SignalB2  Signal = '7'
	SignalB3  Signal = '6'
	SignalS   Signal = '9'
)

// glonassBand describes a GLONASS FDMA band: a base frequency and the
// per-channel spacing applied to the signed frequency-slot number.
type glonassBand struct {
	base    float64
	spacing float64
}

var glonassBands = map[Signal]glonassBand{
	SignalL1: {base: 1602.0e6, spacing: 0.5625e6},
	SignalL2: {base: 1246.0e6, spacing: 0.4375e6},
	'3':      {base: 1202.025e6, spacing: 0}, // G3 is CDMA: one frequency for every slot
}

// fixedFrequencies holds the band-center frequencies, in Hz, for every
// constellation whose signals are not frequency-division multiplexed.
// Grounded directly on the teacher's gnss_frequencies.cc switch table
// (src/core/system_parameters/gnss_frequencies.cc in the original source),
// extended here with IRNSS S-band and BeiDou B3 per spec.md's request to
// supplement dropped bands.
var fixedFrequencies = map[gnsstime.System]map[Signal]float64{
	gnsstime.Gps: {
		SignalL1: 1575.42e6,
		SignalL2: 1227.60e6,
		SignalL5: 1176.45e6,
	},
	gnsstime.Galileo: {
		SignalE1:  1575.42e6,
		SignalE5a: 1176.45e6,
		SignalE5b: 1207.14e6,
		SignalE5:  1191.795e6,
		SignalE6:  1278.75e6,
	},
	gnsstime.BeiDou: {
		SignalB1: 1561.098e6,
		SignalB2: 1207.14e6,
		SignalB3: 1268.52e6,
	},
	gnsstime.Qzss: {
		SignalL1: 1575.42e6,
		SignalL2: 1227.60e6,
		SignalL5: 1176.45e6,
	},
	gnsstime.Sbas: {
		SignalL1: 1575.42e6,
		SignalL5: 1176.45e6,
	},
	gnsstime.Irnss: {
		SignalL5: 1176.45e6,
		SignalS:  2492.028e6,
	},
}

// FrequencyTable resolves a constellation/signal/frequency-slot triple to a
// carrier frequency in Hz. It is stateless; a single instance may be shared
// across every channel of an ObservablesEngine.
type FrequencyTable struct{}

// NewFrequencyTable returns a ready-to-use FrequencyTable.
func NewFrequencyTable() FrequencyTable { return FrequencyTable{} }

// Frequency returns the carrier frequency for the given system and signal.
// freqNum is the GLONASS FDMA frequency-slot number (typically -7..+6) and
// is ignored for every other constellation.
func (FrequencyTable) Frequency(sys gnsstime.System, sig Signal, freqNum int) (float64, bool) {
	if sys == gnsstime.Glonass {
		band, ok := glonassBands[sig]
		if !ok {
			return 0, false
		}
		return band.base + float64(freqNum)*band.spacing, true
	}

	band, ok := fixedFrequencies[sys]
	if !ok {
		return 0, false
	}
	freq, ok := band[sig]
	return freq, ok
}
