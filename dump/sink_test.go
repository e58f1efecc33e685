package dump_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odrisci/gnss-sdr/dump"
	"github.com/odrisci/gnss-sdr/gnsstime"
	"github.com/odrisci/gnss-sdr/observables"
)

func Test_sink_round_trip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "observables.dat")

	sink, err := dump.NewSink(path)
	require.NoError(t, err)

	epoch := observables.Epoch{
		RxTime: gnsstime.Gnss(gnsstime.Gps, 2100, 100.5),
		Measurements: []observables.ChannelMeasurement{
			{PRN: 12, CarrierDopplerHz: 2500.0, CarrierPhaseCyc: 98765.4, PseudorangeM: 2.1e7, ValidPseudorange: true},
			{PRN: 7, CarrierDopplerHz: -1800.0, CarrierPhaseCyc: 12345.6, PseudorangeM: 2.3e7, ValidPseudorange: false},
		},
	}
	require.NoError(t, sink.WriteEpoch(epoch))
	require.NoError(t, sink.Close())

	records, err := dump.ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, float64(12), records[0][5])
	assert.Equal(t, 1.0, records[0][6])
	assert.Equal(t, float64(7), records[1][5])
	assert.Equal(t, 0.0, records[1][6])
	assert.InDelta(t, 2.1e7, records[0][4], 1e-6)
}

func Test_matrix_export(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "observables.dat")
	matPath := filepath.Join(dir, "observables.txt")

	sink, err := dump.NewSink(binPath)
	require.NoError(t, err)
	epoch := observables.Epoch{
		RxTime: gnsstime.Gnss(gnsstime.Gps, 2100, 0),
		Measurements: []observables.ChannelMeasurement{
			{PRN: 1, ValidPseudorange: true},
		},
	}
	require.NoError(t, sink.WriteEpoch(epoch))
	require.NoError(t, sink.Close())

	require.NoError(t, dump.WriteMatrix(binPath, matPath))

	contents, err := os.ReadFile(matPath)
	require.NoError(t, err)
	assert.NotEmpty(t, contents)
}
