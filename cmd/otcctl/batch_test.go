package main

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var token = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestReadBatchFile(t *testing.T) {
	csv := `holder,amount,unlockDate
# seed round
0x0000000000000000000000000000000000000001, 1000, 1900000000
0x0000000000000000000000000000000000000002,2500,1900000001
`
	p, err := readBatchFile(strings.NewReader(csv), token)
	require.NoError(t, err)
	require.Equal(t, token, p.Token)
	require.Len(t, p.Holders, 2)
	require.Equal(t, common.HexToAddress("0x2"), p.Holders[1])
	require.Equal(t, []int64{1_900_000_000, 1_900_000_001}, p.UnlockDates)
	require.Equal(t, big.NewInt(3500), batchTotal(p))
	require.Nil(t, p.Identifier)
}

func TestReadBatchFileErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", "holder,amount,unlockDate\n"},
		{"bad address", "0x01,1,1\n0x12,1,1\n"},
		{"bad amount", "0x0000000000000000000000000000000000000001,-5,1\n"},
		{"bad date", "0x0000000000000000000000000000000000000001,5,tomorrow\n"},
		{"missing column", "0x0000000000000000000000000000000000000001,5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBatchFile(strings.NewReader(tt.csv), token)
			require.Error(t, err)
		})
	}
}

func TestParseIdentifier(t *testing.T) {
	id, err := parseIdentifier("")
	require.NoError(t, err)
	require.Nil(t, id)

	id, err = parseIdentifier("55")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(55), id)

	a, err := parseIdentifier("uuid")
	require.NoError(t, err)
	b, err := parseIdentifier("uuid")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.LessOrEqual(t, a.BitLen(), 128)

	_, err = parseIdentifier("abc")
	require.ErrorIs(t, err, errUsage)
}

func TestArity(t *testing.T) {
	require.NoError(t, arity([]string{"a"}, 1, 2))
	require.ErrorIs(t, arity(nil, 1, 2), errUsage)
	require.ErrorIs(t, arity([]string{"a", "b", "c"}, 1, 2), errUsage)
	require.NoError(t, arity(make([]string, 12), 8, -1))
}
