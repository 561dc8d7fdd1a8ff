package contracts

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
)

// pollingClientMock serves a growing chain of DealClosed logs, one per block
type pollingClientMock struct {
	EthereumClient

	mu       sync.Mutex
	head     int64
	failNext int
	queries  []ethereum.FilterQuery
}

func (m *pollingClientMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head++
	return &types.Header{Number: big.NewInt(m.head)}, nil
}

func (m *pollingClientMock) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return nil, errors.New("timeout")
	}
	m.queries = append(m.queries, q)

	ev := DealLedgerABI.Events["DealClosed"]
	var logs []types.Log
	for b := q.FromBlock.Int64(); b <= q.ToBlock.Int64(); b++ {
		data, _ := ev.Inputs.Pack(big.NewInt(b))
		logs = append(logs, types.Log{Topics: []common.Hash{ev.ID}, Data: data, BlockNumber: uint64(b)})
	}
	return logs, nil
}

func TestLogWatcherDeliversEachBlockOnce(t *testing.T) {
	client := &pollingClientMock{failNext: 1}
	w := NewLogWatcherPolling(client, time.Millisecond, 3, lib.NewTestLogger())

	sub, err := w.Watch(context.Background(), tokenA, DealLedgerEventMapper(), big.NewInt(1))
	require.NoError(t, err)
	defer sub.Unsubscribe()

	for want := int64(1); want <= 5; want++ {
		select {
		case ev := <-sub.Events():
			require.Equal(t, big.NewInt(want), ev.(*LedgerDealClosed).Id)
		case err := <-sub.Err():
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("no event")
		}
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	for i := 1; i < len(client.queries); i++ {
		prevTo := client.queries[i-1].ToBlock.Int64()
		require.Equal(t, prevTo+1, client.queries[i].FromBlock.Int64())
	}
}

func TestLogWatcherGivesUpAfterRetries(t *testing.T) {
	client := &pollingClientMock{failNext: 10}
	w := NewLogWatcherPolling(client, time.Millisecond, 2, lib.NewTestLogger())

	sub, err := w.Watch(context.Background(), tokenA, DealLedgerEventMapper(), nil)
	require.NoError(t, err)

	select {
	case err := <-sub.Err():
		require.EqualError(t, err, "timeout")
	case <-time.After(time.Second):
		t.Fatal("expected error")
	}
}
