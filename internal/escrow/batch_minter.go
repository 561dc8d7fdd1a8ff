package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
)

type BatchMintRequest struct {
	Registry    common.Address
	Holders     []common.Address
	Token       common.Address
	Amounts     []*big.Int
	UnlockDates []int64
	// Identifier is echoed in a BatchMinted event when set
	Identifier *big.Int
}

// BatchMinter funds many claims on one registry with a single token pull
type BatchMinter struct {
	addr  common.Address
	world *World
	r     reverter
	log   interfaces.ILogger
}

func (w *World) DeployBatchMinter(log interfaces.ILogger) *BatchMinter {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &BatchMinter{addr: w.newAddress(), world: w, log: log}
}

func (b *BatchMinter) Address() common.Address { return b.addr }

// BatchMint issues one claim per holder or none at all. It returns the ids in request order.
func (b *BatchMinter) BatchMint(msg Msg, req BatchMintRequest) ([]uint64, error) {
	var ids []uint64
	err := b.world.execute(func(tx *txn) error {
		n := len(req.Holders)
		if len(req.Amounts) != n || len(req.UnlockDates) != n {
			return b.r.revert(CodeArrayLength)
		}
		registry, ok := tx.world.registries[req.Registry]
		if !ok {
			return b.r.revert(CodeUnknownRegistry)
		}
		if req.Token == (common.Address{}) {
			return registry.r.revert(CodeFutureTerms)
		}
		token, ok := tx.world.tokens[req.Token]
		if !ok {
			return registry.r.revert(CodeInsufficientBalance)
		}

		total := new(big.Int)
		for i := 0; i < n; i++ {
			if req.Amounts[i] == nil || req.Amounts[i].Sign() <= 0 {
				return b.r.revert(CodeBatchAmount)
			}
			if req.UnlockDates[i] <= tx.now {
				return b.r.revert(CodeBatchDate)
			}
			if req.Holders[i] == (common.Address{}) {
				return b.r.revert(CodeMintToZero)
			}
			total.Add(total, req.Amounts[i])
		}

		if err := tx.pullExact(registry.r, token, b.addr, msg.Sender, registry.addr, total); err != nil {
			return err
		}

		ids = make([]uint64, 0, n)
		for i := 0; i < n; i++ {
			ids = append(ids, registry.mintRecord(tx, req.Holders[i], req.Amounts[i], req.Token, req.UnlockDates[i]))
		}

		if req.Identifier != nil {
			tx.emit(b.addr, BatchMinted{Identifier: new(big.Int).Set(req.Identifier)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Debugf("batch of %d claims minted on %s", len(ids), req.Registry.Hex())
	return ids, nil
}
