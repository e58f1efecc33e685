package dump

import (
	"bufio"
	"fmt"
	"os"
)

// WriteMatrix renders a previously-written binary dump file as a
// space-separated text matrix, one row per channel-epoch record, in the
// same field order as the binary format (spec.md §6 "matrix export"). This
// stands in for the teacher domain's matio-based .mat export: no example
// repo in the retrieved pack carries a MAT-file writer, so this one
// component is built on the standard library rather than left unimplemented
// (see DESIGN.md).
func WriteMatrix(binaryFilename, matrixFilename string) error {
	records, err := ReadRecords(binaryFilename)
	if err != nil {
		return fmt.Errorf("dump: reading %q: %w", binaryFilename, err)
	}

	f, err := os.Create(matrixFilename)
	if err != nil {
		return fmt.Errorf("dump: creating %q: %w", matrixFilename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		for i, v := range rec {
			if i > 0 {
				if _, err := w.WriteString(" "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%.15g", v); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
