package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
)

// TrnType represents the type of an investment transaction
type TrnType string

// Transaction types
const (
	TrnBuy        TrnType = "BUY"
	TrnSell       TrnType = "SELL"
	TrnDivi       TrnType = "DIVI"
	TrnSplit      TrnType = "SPLIT"
	TrnDeposit    TrnType = "DEPOSIT"
	TrnWithdrawal TrnType = "WITHDRAWAL"
	TrnFxBuy      TrnType = "FX_BUY"
	TrnBalance    TrnType = "BALANCE"
	TrnAdd        TrnType = "ADD"
)

// trnTypes is the closed set of known transaction types
var trnTypes = map[TrnType]struct{}{
	TrnBuy:        {},
	TrnSell:       {},
	TrnDivi:       {},
	TrnSplit:      {},
	TrnDeposit:    {},
	TrnWithdrawal: {},
	TrnFxBuy:      {},
	TrnBalance:    {},
	TrnAdd:        {},
}

// ParseTrnType resolves a caller-supplied type string to a known TrnType
func ParseTrnType(value string) (TrnType, error) {
	t := TrnType(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := trnTypes[t]; !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidTrnType, value)
	}
	return t, nil
}

// CashSign returns the sign the computed cash impact carries for this type.
// -1 debits the cash asset, +1 credits it, 0 means no cash impact.
func (t TrnType) CashSign() int {
	switch t {
	case TrnBuy, TrnWithdrawal, TrnFxBuy:
		return -1
	case TrnSell, TrnDivi, TrnDeposit:
		return 1
	case TrnSplit, TrnBalance, TrnAdd:
		return 0
	default:
		return 0
	}
}

// IsEvent returns true for corporate-event types eligible for PROPOSED
// creation and automatic settlement.
func (t TrnType) IsEvent() bool {
	return t == TrnDivi || t == TrnSplit
}

// IsCashTrade returns true for pure cash movements where the traded asset is
// itself a cash instrument.
func (t TrnType) IsCashTrade() bool {
	return t == TrnDeposit || t == TrnWithdrawal || t == TrnFxBuy || t == TrnBalance
}

// EventTypes returns the transaction types the auto-settlement sweep selects.
func EventTypes() []TrnType {
	return []TrnType{TrnDivi, TrnSplit}
}
