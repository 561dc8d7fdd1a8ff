package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const DealLedgerABIJSON = `[
{"type":"function","name":"create","stateMutability":"payable","inputs":[
	{"name":"token","type":"address"},{"name":"paymentCurrency","type":"address"},{"name":"amount","type":"uint256"},
	{"name":"min","type":"uint256"},{"name":"price","type":"uint256"},{"name":"maturity","type":"uint256"},
	{"name":"unlockDate","type":"uint256"},{"name":"buyer","type":"address"}],"outputs":[]},
{"type":"function","name":"createNFTGatedDeal","stateMutability":"payable","inputs":[
	{"name":"token","type":"address"},{"name":"paymentCurrency","type":"address"},{"name":"amount","type":"uint256"},
	{"name":"min","type":"uint256"},{"name":"price","type":"uint256"},{"name":"maturity","type":"uint256"},
	{"name":"unlockDate","type":"uint256"},{"name":"whitelist","type":"address[]"}],"outputs":[]},
{"type":"function","name":"buy","stateMutability":"payable","inputs":[{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
{"type":"function","name":"close","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"deals","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
	{"name":"seller","type":"address"},{"name":"token","type":"address"},{"name":"paymentCurrency","type":"address"},
	{"name":"remainingAmount","type":"uint256"},{"name":"minimumPurchase","type":"uint256"},{"name":"price","type":"uint256"},
	{"name":"maturity","type":"uint256"},{"name":"unlockDate","type":"uint256"},{"name":"buyer","type":"address"}]},
{"type":"function","name":"d","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"weth","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"event","name":"NewDeal","anonymous":false,"inputs":[
	{"name":"id","type":"uint256","indexed":false},{"name":"seller","type":"address","indexed":false},
	{"name":"token","type":"address","indexed":false},{"name":"paymentCurrency","type":"address","indexed":false},
	{"name":"remainingAmount","type":"uint256","indexed":false},{"name":"minimumPurchase","type":"uint256","indexed":false},
	{"name":"price","type":"uint256","indexed":false},{"name":"maturity","type":"uint256","indexed":false},
	{"name":"unlockDate","type":"uint256","indexed":false},{"name":"buyer","type":"address","indexed":false}]},
{"type":"event","name":"TokensBought","anonymous":false,"inputs":[
	{"name":"id","type":"uint256","indexed":false},{"name":"amount","type":"uint256","indexed":false},
	{"name":"remainingAmount","type":"uint256","indexed":false}]},
{"type":"event","name":"DealClosed","anonymous":false,"inputs":[{"name":"id","type":"uint256","indexed":false}]}
]`

const FuturesABIJSON = `[
{"type":"function","name":"createNFT","stateMutability":"nonpayable","inputs":[
	{"name":"holder","type":"address"},{"name":"amount","type":"uint256"},{"name":"token","type":"address"},
	{"name":"unlockDate","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"redeemNFT","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"futures","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[
	{"name":"amount","type":"uint256"},{"name":"token","type":"address"},{"name":"unlockDate","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[
	{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"updateBaseURI","stateMutability":"nonpayable","inputs":[{"name":"uri","type":"string"}],"outputs":[]},
{"type":"event","name":"NFTCreated","anonymous":false,"inputs":[
	{"name":"id","type":"uint256","indexed":false},{"name":"holder","type":"address","indexed":false},
	{"name":"amount","type":"uint256","indexed":false},{"name":"token","type":"address","indexed":false},
	{"name":"unlockDate","type":"uint256","indexed":false}]},
{"type":"event","name":"NFTRedeemed","anonymous":false,"inputs":[
	{"name":"id","type":"uint256","indexed":false},{"name":"holder","type":"address","indexed":false},
	{"name":"amount","type":"uint256","indexed":false},{"name":"token","type":"address","indexed":false},
	{"name":"unlockDate","type":"uint256","indexed":false}]},
{"type":"event","name":"Transfer","anonymous":false,"inputs":[
	{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},
	{"name":"tokenId","type":"uint256","indexed":true}]}
]`

// the second batchMint overload is exposed by go-ethereum as batchMint0
const BatchMinterABIJSON = `[
{"type":"function","name":"batchMint","stateMutability":"nonpayable","inputs":[
	{"name":"nftContract","type":"address"},{"name":"holders","type":"address[]"},{"name":"token","type":"address"},
	{"name":"amounts","type":"uint256[]"},{"name":"unlockDates","type":"uint256[]"}],"outputs":[]},
{"type":"function","name":"batchMint","stateMutability":"nonpayable","inputs":[
	{"name":"nftContract","type":"address"},{"name":"holders","type":"address[]"},{"name":"token","type":"address"},
	{"name":"amounts","type":"uint256[]"},{"name":"unlockDates","type":"uint256[]"},{"name":"mintType","type":"uint256"}],"outputs":[]},
{"type":"event","name":"BatchMinted","anonymous":false,"inputs":[{"name":"mintType","type":"uint256","indexed":false}]}
]`

const ERC20ABIJSON = `[
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

var (
	DealLedgerABI  = mustParseABI(DealLedgerABIJSON)
	FuturesABI     = mustParseABI(FuturesABIJSON)
	BatchMinterABI = mustParseABI(BatchMinterABIJSON)
	ERC20ABI       = mustParseABI(ERC20ABIJSON)
)

func mustParseABI(s string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("invalid ABI: " + err.Error())
	}
	return &parsed
}
