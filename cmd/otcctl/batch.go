package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
)

// readBatchFile parses holder,amount,unlockDate rows; a leading header row is skipped
func readBatchFile(r io.Reader, token common.Address) (contracts.BatchMintParams, error) {
	params := contracts.BatchMintParams{Token: token}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return contracts.BatchMintParams{}, err
		}
		if row == 1 && !common.IsHexAddress(strings.TrimSpace(record[0])) {
			continue
		}

		holder, err := parseAddress(strings.TrimSpace(record[0]))
		if err != nil {
			return contracts.BatchMintParams{}, fmt.Errorf("row %d: %w", row, err)
		}
		amount, err := parseAmount(strings.TrimSpace(record[1]))
		if err != nil {
			return contracts.BatchMintParams{}, fmt.Errorf("row %d: %w", row, err)
		}
		unlock, err := parseUnix(strings.TrimSpace(record[2]))
		if err != nil {
			return contracts.BatchMintParams{}, fmt.Errorf("row %d: %w", row, err)
		}

		params.Holders = append(params.Holders, holder)
		params.Amounts = append(params.Amounts, amount)
		params.UnlockDates = append(params.UnlockDates, unlock)
	}

	if len(params.Holders) == 0 {
		return contracts.BatchMintParams{}, fmt.Errorf("%w: empty batch", errUsage)
	}
	return params, nil
}

func batchTotal(p contracts.BatchMintParams) *big.Int {
	total := new(big.Int)
	for _, a := range p.Amounts {
		total.Add(total, a)
	}
	return total
}
