// Package csvio decodes transaction rows and encodes client balance rows.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikh-saqib/payments-engine/internal/models"
)

var ErrMalformedRecord = errors.New("malformed transaction record")

const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

// Reader decodes a "type,client,tx,amount" CSV stream. Columns are found
// by header name, fields are trimmed and the amount column may be left out
// of rows that don't need it.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

// Read returns the next transaction, or io.EOF when the input is exhausted.
func (r *Reader) Read() (models.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return models.Transaction{}, err
		}
	}

	record, err := r.csv.Read()
	if err == io.EOF {
		return models.Transaction{}, io.EOF
	}
	if err != nil {
		return models.Transaction{}, errors.Wrap(ErrMalformedRecord, err.Error())
	}
	line, _ := r.csv.FieldPos(0)

	tx, err := r.decode(record)
	if err != nil {
		return models.Transaction{}, errors.Wrapf(err, "line %d", line)
	}
	return tx, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err == io.EOF {
		return errors.Wrap(ErrMalformedRecord, "missing header")
	}
	if err != nil {
		return errors.Wrap(ErrMalformedRecord, err.Error())
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colType, colClient, colTx} {
		if _, ok := columns[required]; !ok {
			return errors.Wrapf(ErrMalformedRecord, "header has no %q column", required)
		}
	}

	r.columns = columns
	return nil
}

func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) decode(record []string) (models.Transaction, error) {
	kind, err := models.ParseTransactionKind(r.field(record, colType))
	if err != nil {
		return models.Transaction{}, errors.Wrap(ErrMalformedRecord, err.Error())
	}

	client, err := strconv.ParseUint(r.field(record, colClient), 10, 16)
	if err != nil {
		return models.Transaction{}, errors.Wrapf(ErrMalformedRecord, "client id %q", r.field(record, colClient))
	}

	tx, err := strconv.ParseUint(r.field(record, colTx), 10, 32)
	if err != nil {
		return models.Transaction{}, errors.Wrapf(ErrMalformedRecord, "tx id %q", r.field(record, colTx))
	}

	return models.Transaction{
		Kind:     kind,
		ClientID: models.ClientID(client),
		TxID:     models.TxID(tx),
		Amount:   r.field(record, colAmount),
	}, nil
}
