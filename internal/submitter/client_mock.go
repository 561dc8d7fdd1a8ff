package submitter

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/atomic"
)

// EthClientMock is an EthereumClient whose behaviour is set per method
type EthClientMock struct {
	PendingNonceAtFunc     func(ctx context.Context, account common.Address) (uint64, error)
	SendTransactionFunc    func(ctx context.Context, tx *types.Transaction) error
	TransactionReceiptFunc func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	PendingNonceAtCalledTimes     atomic.Int32
	SendTransactionCalledTimes    atomic.Int32
	TransactionReceiptCalledTimes atomic.Int32
}

func (m *EthClientMock) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	m.PendingNonceAtCalledTimes.Inc()
	return m.PendingNonceAtFunc(ctx, account)
}

func (m *EthClientMock) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	m.SendTransactionCalledTimes.Inc()
	return m.SendTransactionFunc(ctx, tx)
}

func (m *EthClientMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.TransactionReceiptCalledTimes.Inc()
	return m.TransactionReceiptFunc(ctx, txHash)
}
