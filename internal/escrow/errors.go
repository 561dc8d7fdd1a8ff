package escrow

import (
	"errors"
	"fmt"
)

// Code identifies a rejected precondition independently of how a contract
// revision spells it.
type Code int

const (
	CodeUnknown Code = iota

	// deal ledger
	CodeMaturityInPast
	CodeAmountBelowMinimum
	CodeNonPositiveTerms
	CodeWrongValue
	CodeInsufficientBalance
	CodeTransferMismatch
	CodeNoDecimals
	CodeNotSeller
	CodeDealExhausted
	CodeDealClosed
	CodeSellerIsBuyer
	CodeRestrictedBuyer
	CodePurchaseSize
	CodeExceedsRemaining
	CodeUnknownDeal

	// futures registry
	CodeFutureAmount
	CodeFutureTerms
	CodeNotOwner
	CodeNotUnlocked
	CodeURISet
	CodeNotAdmin
	CodeNotTransferable
	CodeNonexistentToken
	CodeApprovalToOwner
	CodeApproveCaller
	CodeTransferCaller
	CodeTransferFromIncorrectOwner
	CodeTransferToZero
	CodeOwnerIndex
	CodeMintToZero

	// batch minter
	CodeArrayLength
	CodeBatchAmount
	CodeBatchDate
	CodeUnknownRegistry

	// token level
	CodeInsufficientAllowance
	CodeTokenBalance

	codeCount
)

// Dialect is one of the revert string schemes observed across contract revisions.
type Dialect int

const (
	DialectShort Dialect = iota
	DialectVerbose
)

// strings shared by every revision
var commonCodes = map[Code]string{
	CodeNoDecimals:                 "decimals unavailable",
	CodeUnknownDeal:                "deal does not exist",
	CodeNotTransferable:            "Not transferrable",
	CodeNonexistentToken:           "ERC721: owner query for nonexistent token",
	CodeApprovalToOwner:            "ERC721: approval to current owner",
	CodeApproveCaller:              "ERC721: approve caller is not owner nor approved for all",
	CodeTransferCaller:             "ERC721: transfer caller is not owner nor approved",
	CodeTransferFromIncorrectOwner: "ERC721: transfer from incorrect owner",
	CodeTransferToZero:             "ERC721: transfer to the zero address",
	CodeArrayLength:                "array error",
	CodeBatchAmount:                "amount error",
	CodeBatchDate:                  "date error",
	CodeUnknownRegistry:            "registry error",
	CodeInsufficientAllowance:      "ERC20: insufficient allowance",
	CodeTokenBalance:               "ERC20: transfer amount exceeds balance",
	CodeOwnerIndex:                 "ERC721Enumerable: owner index out of bounds",
	CodeMintToZero:                 "ERC721: mint to the zero address",
}

var shortCodes = map[Code]string{
	CodeMaturityInPast:      "OTC01",
	CodeAmountBelowMinimum:  "OTC02",
	CodeNonPositiveTerms:    "OTC03",
	CodeNotSeller:           "OTC04",
	CodeDealExhausted:       "OTC05",
	CodeDealClosed:          "OTC06",
	CodeSellerIsBuyer:       "OTC07",
	CodeRestrictedBuyer:     "OTC08",
	CodePurchaseSize:        "OTC09",
	CodeExceedsRemaining:    "OTC10",
	CodeInsufficientBalance: "THL01",
	CodeTransferMismatch:    "THL02",
	CodeWrongValue:          "THL03",
	CodeFutureAmount:        "NFT01",
	CodeFutureTerms:         "NFT01",
	CodeNotOwner:            "NFT03",
	CodeNotUnlocked:         "NFT04",
	CodeURISet:              "NFT05",
	CodeNotAdmin:            "NFT06",
}

var verboseCodes = map[Code]string{
	CodeMaturityInPast:      "HEC01: Maturity before block timestamp",
	CodeAmountBelowMinimum:  "HEC02: Amount less than minium",
	CodeNonPositiveTerms:    "HEC03: Minimum smaller than 0",
	CodeNotSeller:           "HEC04: Only Seller Can Close",
	CodeDealExhausted:       "HEC05: All tokens have been sold",
	CodeDealClosed:          "HEC06: Deal has been closed",
	CodeSellerIsBuyer:       "HEC07: Buyer cannot be seller",
	CodeRestrictedBuyer:     "HEC08: Whitelist or buyer allowance error",
	CodePurchaseSize:        "HEC09: Insufficient Purchase Size",
	CodeExceedsRemaining:    "HEC10: Not enough tokens",
	CodeWrongValue:          "HECA: Incorrect Transfer Value",
	CodeInsufficientBalance: "HECB: Insufficient Balance",
	CodeTransferMismatch:    "HECC: Wrong amount",
	CodeFutureAmount:        "HEC01: NFT Minting Error",
	CodeFutureTerms:         "HEC01: NFT Minting Error",
	CodeURISet:              "HNEC06: uri already set",
	CodeNotAdmin:            "HNEC07: Only admin",
}

// the futures registry spells its balance checks differently in the verbose revision
var verboseRegistryCodes = map[Code]string{
	CodeInsufficientBalance: "HNEC02: Insufficient Balance",
	CodeTransferMismatch:    "HNEC03: Wrong amount",
}

func (d Dialect) String() string {
	switch d {
	case DialectShort:
		return "short"
	case DialectVerbose:
		return "verbose"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Render returns the revert string a contract of this dialect emits for code
func (d Dialect) Render(code Code) string {
	return d.render(code, false)
}

func (d Dialect) render(code Code, registry bool) string {
	if s, ok := commonCodes[code]; ok {
		return s
	}
	if d == DialectVerbose {
		if registry {
			if s, ok := verboseRegistryCodes[code]; ok {
				return s
			}
		}
		if s, ok := verboseCodes[code]; ok {
			return s
		}
	}
	if s, ok := shortCodes[code]; ok {
		return s
	}
	return fmt.Sprintf("revert(%d)", int(code))
}

// RevertError is a synchronous rejection of a contract call. Its state changes
// are rolled back before it is returned.
type RevertError struct {
	Code   Code
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return DialectShort.Render(e.Code)
}

// Is matches any RevertError carrying the same code, regardless of dialect
func (e *RevertError) Is(target error) bool {
	t, ok := target.(*RevertError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the taxonomy code from err, or CodeUnknown
func CodeOf(err error) Code {
	var rev *RevertError
	if errors.As(err, &rev) {
		return rev.Code
	}
	return CodeUnknown
}

func sentinel(code Code) *RevertError {
	return &RevertError{Code: code}
}

var (
	ErrMaturityInPast      = sentinel(CodeMaturityInPast)
	ErrAmountBelowMinimum  = sentinel(CodeAmountBelowMinimum)
	ErrNonPositiveTerms    = sentinel(CodeNonPositiveTerms)
	ErrWrongValue          = sentinel(CodeWrongValue)
	ErrInsufficientBalance = sentinel(CodeInsufficientBalance)
	ErrTransferMismatch    = sentinel(CodeTransferMismatch)
	ErrNoDecimals          = sentinel(CodeNoDecimals)
	ErrNotSeller           = sentinel(CodeNotSeller)
	ErrDealExhausted       = sentinel(CodeDealExhausted)
	ErrDealClosed          = sentinel(CodeDealClosed)
	ErrSellerIsBuyer       = sentinel(CodeSellerIsBuyer)
	ErrRestrictedBuyer     = sentinel(CodeRestrictedBuyer)
	ErrPurchaseSize        = sentinel(CodePurchaseSize)
	ErrExceedsRemaining    = sentinel(CodeExceedsRemaining)
	ErrUnknownDeal         = sentinel(CodeUnknownDeal)

	ErrFutureAmount         = sentinel(CodeFutureAmount)
	ErrFutureTerms          = sentinel(CodeFutureTerms)
	ErrNotOwner             = sentinel(CodeNotOwner)
	ErrNotUnlocked          = sentinel(CodeNotUnlocked)
	ErrURISet               = sentinel(CodeURISet)
	ErrNotAdmin             = sentinel(CodeNotAdmin)
	ErrNotTransferable      = sentinel(CodeNotTransferable)
	ErrNonexistentToken     = sentinel(CodeNonexistentToken)
	ErrApprovalToOwner      = sentinel(CodeApprovalToOwner)
	ErrApproveCaller        = sentinel(CodeApproveCaller)
	ErrTransferCaller       = sentinel(CodeTransferCaller)
	ErrTransferFromNotOwner = sentinel(CodeTransferFromIncorrectOwner)
	ErrTransferToZero       = sentinel(CodeTransferToZero)
	ErrOwnerIndex           = sentinel(CodeOwnerIndex)
	ErrMintToZero           = sentinel(CodeMintToZero)

	ErrArrayLength     = sentinel(CodeArrayLength)
	ErrBatchAmount     = sentinel(CodeBatchAmount)
	ErrBatchDate       = sentinel(CodeBatchDate)
	ErrUnknownRegistry = sentinel(CodeUnknownRegistry)

	ErrInsufficientAllowance = sentinel(CodeInsufficientAllowance)
	ErrTokenBalance          = sentinel(CodeTokenBalance)
)
