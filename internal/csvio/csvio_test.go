package csvio

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-engine/internal/amount"
	"github.com/sheikh-saqib/payments-engine/internal/models"
)

func readAll(t *testing.T, input string) ([]models.Transaction, error) {
	t.Helper()
	r := NewReader(strings.NewReader(input))

	var txs []models.Transaction
	for {
		tx, err := r.Read()
		if err == io.EOF {
			return txs, nil
		}
		if err != nil {
			return txs, err
		}
		txs = append(txs, tx)
	}
}

func TestReader(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"Withdrawal,  2,2 ,  0.5 \n" +
		"dispute, 1, 1\n" +
		"resolve, 1, 1,\n" +
		"\n" +
		"CHARGEBACK, 65535, 4294967295, \n"

	txs, err := readAll(t, input)
	require.NoError(t, err)

	assert.Equal(t, []models.Transaction{
		{Kind: models.Deposit, ClientID: 1, TxID: 1, Amount: "1.0"},
		{Kind: models.Withdrawal, ClientID: 2, TxID: 2, Amount: "0.5"},
		{Kind: models.Dispute, ClientID: 1, TxID: 1},
		{Kind: models.Resolve, ClientID: 1, TxID: 1},
		{Kind: models.ChargeBack, ClientID: 65535, TxID: 4294967295},
	}, txs)
}

func TestReader_ColumnOrder(t *testing.T) {
	txs, err := readAll(t, "tx,amount,client,type\n3,2.25,7,deposit\n")
	require.NoError(t, err)
	assert.Equal(t, []models.Transaction{
		{Kind: models.Deposit, ClientID: 7, TxID: 3, Amount: "2.25"},
	}, txs)
}

func TestReader_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty input":      "",
		"missing column":   "type,client\ndeposit,1\n",
		"unknown type":     "type,client,tx,amount\ntransfer,1,1,1.0\n",
		"negative client":  "type,client,tx,amount\ndeposit,-1,1,1.0\n",
		"client too large": "type,client,tx,amount\ndeposit,65536,1,1.0\n",
		"tx too large":     "type,client,tx,amount\ndeposit,1,4294967296,1.0\n",
		"missing tx":       "type,client,tx,amount\ndeposit,1\n",
		"bad quoting":      "type,client,tx,amount\ndeposit,1,1,\"1.0\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readAll(t, input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "unexpected error: %v", err)
		})
	}
}

func TestReader_ReportsLine(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1\ndeposit,1,2,1\nrefund,1,3,1\n"
	txs, err := readAll(t, input)
	require.Error(t, err)
	assert.Len(t, txs, 2)
	assert.Contains(t, err.Error(), "line 4")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).WriteAll([]models.ClientSnapshot{
		{
			ClientID:  1,
			Available: amount.MustParse("1.5"),
			Held:      amount.Zero,
			Total:     amount.MustParse("1.5"),
		},
		{
			ClientID:  2,
			Available: amount.MustParse("2"),
			Held:      amount.MustParse("0.0001"),
			Total:     amount.MustParse("2.0001"),
			Locked:    true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "client,available,held,total,locked\n"+
		"1,1.5000,0.0000,1.5000,false\n"+
		"2,2.0000,0.0001,2.0001,true\n", buf.String())
}

func TestWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteAll(nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestWriter_ManyRows(t *testing.T) {
	snapshots := make([]models.ClientSnapshot, 250)
	for i := range snapshots {
		snapshots[i].ClientID = models.ClientID(i)
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteAll(snapshots))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 251)
	assert.Equal(t, fmt.Sprintf("%d,0.0000,0.0000,0.0000,false", 249), lines[250])
}
