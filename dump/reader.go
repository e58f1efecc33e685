package dump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ReadRecords reads a binary dump file back into its fixed-width float64
// records (fieldsPerChannel values each), for offline analysis or matrix
// export.
func ReadRecords(filename string) ([][fieldsPerChannel]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records [][fieldsPerChannel]float64
	var buf [8]byte

	for {
		var rec [fieldsPerChannel]float64
		for i := 0; i < fieldsPerChannel; i++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				if err == io.EOF && i == 0 {
					return records, nil
				}
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return nil, fmt.Errorf("dump: %q: truncated record", filename)
				}
				return nil, err
			}
			rec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
		}
		records = append(records, rec)
	}
}
