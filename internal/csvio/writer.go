package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

// flushEvery bounds how many rows sit in the buffer so a piped reader can
// consume the output as a stream.
const flushEvery = 100

var header = []string{"client", "available", "held", "total", "locked"}

type Writer struct {
	csv *csv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteAll writes the header followed by one row per snapshot.
func (w *Writer) WriteAll(snapshots []models.ClientSnapshot) error {
	if err := w.csv.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	row := make([]string, len(header))
	for i, s := range snapshots {
		row[0] = strconv.FormatUint(uint64(s.ClientID), 10)
		row[1] = s.Available.String()
		row[2] = s.Held.String()
		row[3] = s.Total.String()
		row[4] = strconv.FormatBool(s.Locked)

		if err := w.csv.Write(row); err != nil {
			return errors.Wrapf(err, "writing client %d", s.ClientID)
		}
		if (i+1)%flushEvery == 0 {
			w.csv.Flush()
			if err := w.csv.Error(); err != nil {
				return errors.Wrap(err, "flushing rows")
			}
		}
	}

	w.csv.Flush()
	return errors.Wrap(w.csv.Error(), "flushing rows")
}
