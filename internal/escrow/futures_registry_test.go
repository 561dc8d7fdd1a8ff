package escrow

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFuturesCreate(t *testing.T) {
	f := newFixture(t)
	unlock := f.inOneHour()

	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(1), f.token.Address(), unlock)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	future := f.futures.Future(id)
	require.Equal(t, e18(1), future.Amount)
	require.Equal(t, f.token.Address(), future.Token)
	require.Equal(t, unlock, future.UnlockDate)

	owner, err := f.futures.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, buyer, owner)
	require.Equal(t, uint64(1), f.futures.BalanceOf(buyer))
	require.Equal(t, uint64(1), f.futures.TotalSupply())
	require.Equal(t, e18(1), f.balance(f.token, f.futures.Address()))

	require.Equal(t, []Event{
		Transfer{From: common.Address{}, To: buyer, ID: id},
		NFTCreated{ID: id, Holder: buyer, Amount: e18(1), Token: f.token.Address(), UnlockDate: unlock},
	}, f.events(f.futures.Address()))

	id2, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(2), f.token.Address(), unlock)
	require.NoError(t, err)
	require.Equal(t, uint64(2), id2)
	f.requireConserved(f.token)
}

func TestFuturesCreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		amount  *big.Int
		token   func(f *fixture) common.Address
		unlock  func(f *fixture) int64
		err     error
		short   string
		verbose string
	}{
		{"zero amount", big.NewInt(0), tokenOf, inOneHourOf, ErrFutureAmount, "NFT01", "HEC01: NFT Minting Error"},
		{"zero token", e18(1), func(*fixture) common.Address { return common.Address{} }, inOneHourOf, ErrFutureTerms, "NFT01", "HEC01: NFT Minting Error"},
		{"past unlock", e18(1), tokenOf, func(*fixture) int64 { return 0 }, ErrFutureTerms, "NFT01", "HEC01: NFT Minting Error"},
		{"insufficient balance", e18(5000), tokenOf, inOneHourOf, ErrInsufficientBalance, "THL01", "HNEC02: Insufficient Balance"},
		{"fee on transfer", e18(1), func(f *fixture) common.Address { return f.burn.Address() }, inOneHourOf, ErrTransferMismatch, "THL02", "HNEC03: Wrong amount"},
	}

	for _, dialect := range []Dialect{DialectShort, DialectVerbose} {
		for _, tt := range tests {
			t.Run(dialect.String()+" "+tt.name, func(t *testing.T) {
				f := newFixture(t, fixtureOpts{dialect: dialect})
				_, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, tt.amount, tt.token(f), tt.unlock(f))
				require.ErrorIs(t, err, tt.err)
				if dialect == DialectShort {
					require.EqualError(t, err, tt.short)
				} else {
					require.EqualError(t, err, tt.verbose)
				}
				require.Zero(t, f.futures.TotalSupply())
				require.Empty(t, f.events(f.futures.Address()))
			})
		}
	}
}

func TestFuturesCreateToZeroHolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.futures.CreateNFT(Msg{Sender: seller}, common.Address{}, e18(1), f.token.Address(), f.inOneHour())
	require.ErrorIs(t, err, ErrMintToZero)
	require.EqualError(t, err, "ERC721: mint to the zero address")

	require.Zero(t, f.futures.TotalSupply())
	require.Zero(t, f.futures.LastID())
	require.Empty(t, f.events(f.futures.Address()))
	require.Equal(t, e18(1000), f.balance(f.token, seller))
	require.Zero(t, f.balance(f.token, f.futures.Address()).Sign())
}

func tokenOf(f *fixture) common.Address { return f.token.Address() }

func inOneHourOf(f *fixture) int64 { return f.inOneHour() }

func TestFuturesRedeem(t *testing.T) {
	f := newFixture(t)
	unlock := f.now() + 5
	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(3), f.token.Address(), unlock)
	require.NoError(t, err)

	err = f.futures.RedeemNFT(Msg{Sender: buyer}, id)
	require.ErrorIs(t, err, ErrNotUnlocked)
	require.EqualError(t, err, "NFT04")

	f.clock.Advance(6 * time.Second)
	err = f.futures.RedeemNFT(Msg{Sender: other}, id)
	require.ErrorIs(t, err, ErrNotOwner)
	require.EqualError(t, err, "NFT03")

	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: buyer}, id))
	require.Equal(t, e18(1003), f.balance(f.token, buyer))
	require.Zero(t, f.balance(f.token, f.futures.Address()).Sign())

	evs := f.events(f.futures.Address())
	require.Equal(t, []Event{
		NFTRedeemed{ID: id, Holder: buyer, Amount: e18(3), Token: f.token.Address(), UnlockDate: unlock},
		Transfer{From: buyer, To: common.Address{}, ID: id},
	}, evs[len(evs)-2:])

	future := f.futures.Future(id)
	require.Zero(t, future.Amount.Sign())
	require.Equal(t, common.Address{}, future.Token)
	require.Zero(t, future.UnlockDate)

	_, err = f.futures.OwnerOf(id)
	require.EqualError(t, err, "ERC721: owner query for nonexistent token")
	require.Zero(t, f.futures.BalanceOf(buyer))
	require.Zero(t, f.futures.TotalSupply())

	err = f.futures.RedeemNFT(Msg{Sender: buyer}, id)
	require.ErrorIs(t, err, ErrNonexistentToken)
	require.Equal(t, e18(1003), f.balance(f.token, buyer))
}

func TestFuturesRedeemWrappedNative(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.world.Deposit(Msg{Sender: seller, Value: e18(5)}, f.weth))
	require.NoError(t, f.world.Approve(Msg{Sender: seller}, f.weth, f.futures.Address(), e18(5)))

	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(5), f.weth.Address(), f.inOneHour())
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: buyer}, id))
	require.Equal(t, e18(105), f.world.NativeBalance(buyer))
	require.Zero(t, f.balance(f.weth, buyer).Sign())
}

func TestFuturesTransfer(t *testing.T) {
	f := newFixture(t)
	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(1), f.token.Address(), f.inOneHour())
	require.NoError(t, err)

	err = f.futures.TransferFrom(Msg{Sender: other}, buyer, other, id)
	require.ErrorIs(t, err, ErrTransferCaller)
	err = f.futures.TransferFrom(Msg{Sender: buyer}, seller, other, id)
	require.ErrorIs(t, err, ErrTransferFromNotOwner)
	err = f.futures.TransferFrom(Msg{Sender: buyer}, buyer, common.Address{}, id)
	require.ErrorIs(t, err, ErrTransferToZero)

	require.NoError(t, f.futures.TransferFrom(Msg{Sender: buyer}, buyer, other, id))
	owner, _ := f.futures.OwnerOf(id)
	require.Equal(t, other, owner)
	require.Zero(t, f.futures.BalanceOf(buyer))

	idx, err := f.futures.TokenOfOwnerByIndex(other, 0)
	require.NoError(t, err)
	require.Equal(t, id, idx)
	_, err = f.futures.TokenOfOwnerByIndex(buyer, 0)
	require.ErrorIs(t, err, ErrOwnerIndex)

	f.clock.Advance(time.Hour)
	err = f.futures.RedeemNFT(Msg{Sender: buyer}, id)
	require.ErrorIs(t, err, ErrNotOwner)
	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: other}, id))
	require.Equal(t, e18(1001), f.balance(f.token, other))
}

func TestFuturesApprove(t *testing.T) {
	f := newFixture(t)
	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(1), f.token.Address(), f.inOneHour())
	require.NoError(t, err)

	err = f.futures.Approve(Msg{Sender: other}, other, id)
	require.EqualError(t, err, "ERC721: approve caller is not owner nor approved for all")
	err = f.futures.Approve(Msg{Sender: buyer}, buyer, id)
	require.EqualError(t, err, "ERC721: approval to current owner")

	require.NoError(t, f.futures.Approve(Msg{Sender: buyer}, other, id))
	approved, err := f.futures.GetApproved(id)
	require.NoError(t, err)
	require.Equal(t, other, approved)

	require.NoError(t, f.futures.TransferFrom(Msg{Sender: other}, buyer, other, id))
	approved, _ = f.futures.GetApproved(id)
	require.Equal(t, common.Address{}, approved)

	require.NoError(t, f.futures.SetApprovalForAll(Msg{Sender: other}, seller, true))
	require.True(t, f.futures.IsApprovedForAll(other, seller))
	require.NoError(t, f.futures.SafeTransferFrom(Msg{Sender: seller}, other, buyer, id))
	owner, _ := f.futures.OwnerOf(id)
	require.Equal(t, buyer, owner)
}

func TestFuturesNonTransferable(t *testing.T) {
	f := newFixture(t, fixtureOpts{nonTransferable: true})
	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(1), f.token.Address(), f.now()+5)
	require.NoError(t, err)

	err = f.futures.TransferFrom(Msg{Sender: buyer}, buyer, other, id)
	require.EqualError(t, err, "Not transferrable")
	err = f.futures.SafeTransferFrom(Msg{Sender: buyer}, buyer, other, id)
	require.ErrorIs(t, err, ErrNotTransferable)
	err = f.futures.Approve(Msg{Sender: buyer}, other, id)
	require.ErrorIs(t, err, ErrNotTransferable)

	f.clock.Advance(5 * time.Second)
	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: buyer}, id))
}

func TestFuturesBaseURI(t *testing.T) {
	f := newFixture(t, fixtureOpts{dialect: DialectVerbose})
	id, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(1), f.token.Address(), f.inOneHour())
	require.NoError(t, err)

	uri, err := f.futures.TokenURI(id)
	require.NoError(t, err)
	require.Empty(t, uri)

	err = f.futures.UpdateBaseURI(Msg{Sender: buyer}, "hello/")
	require.ErrorIs(t, err, ErrNotAdmin)

	require.NoError(t, f.futures.UpdateBaseURI(Msg{Sender: admin}, "hello/"))
	uri, err = f.futures.TokenURI(id)
	require.NoError(t, err)
	require.Equal(t, "hello/1", uri)

	err = f.futures.UpdateBaseURI(Msg{Sender: admin}, "goodbye")
	require.EqualError(t, err, "HNEC06: uri already set")
}

func TestFuturesLocked(t *testing.T) {
	f := newFixture(t)
	unlock := f.inOneHour()
	for _, amount := range []int64{1, 2, 3} {
		_, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(amount), f.token.Address(), unlock)
		require.NoError(t, err)
	}
	_, err := f.futures.CreateNFT(Msg{Sender: seller}, buyer, e18(7), f.pay.Address(), unlock)
	require.NoError(t, err)

	require.Equal(t, e18(6), f.futures.Locked(buyer, f.token.Address()))
	require.Equal(t, e18(7), f.futures.Locked(buyer, f.pay.Address()))
	require.Zero(t, f.futures.Locked(other, f.token.Address()).Sign())

	// burning the first claim swaps the last one into its slot
	f.clock.Advance(time.Hour)
	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: buyer}, 1))
	first, err := f.futures.TokenOfOwnerByIndex(buyer, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(4), first)
	require.Equal(t, uint64(3), f.futures.BalanceOf(buyer))
	require.Equal(t, e18(5), f.futures.Locked(buyer, f.token.Address()))
	f.requireConserved(f.token, f.pay)
}
