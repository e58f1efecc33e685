package dump

import "github.com/odrisci/gnss-sdr/observables"

// MultiSink fans a single epoch stream out to several sinks, so a
// configuration can dump to disk and mirror live over serial at once.
type MultiSink []observables.Sink

// WriteEpoch writes epoch to every sink, collecting (but not stopping on)
// the first error encountered.
func (m MultiSink) WriteEpoch(epoch observables.Epoch) error {
	var firstErr error
	for _, s := range m {
		if err := s.WriteEpoch(epoch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
