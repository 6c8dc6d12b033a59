package models

import (
	"github.com/shopspring/decimal"

	"github.com/julianstephens/stackspledge/internal/constants"
)

// Action is a state-changing contract call
type Action string

const (
	ActionCreate   Action = "create-pledge"
	ActionVouch    Action = "vouch-for-pledge"
	ActionComplete Action = "complete-pledge"
)

// ContractFee returns the fee the contract charges for the action, in micro-STX
func (a Action) ContractFee() int64 {
	switch a {
	case ActionCreate:
		return constants.PledgeFee
	case ActionVouch:
		return constants.VouchFee
	case ActionComplete:
		return constants.CompleteFee
	}
	return 0
}

// TxFee returns the network fee attached to the transaction, in micro-STX
func (a Action) TxFee() int64 {
	switch a {
	case ActionCreate:
		return constants.CreateTxFee
	case ActionVouch:
		return constants.VouchTxFee
	case ActionComplete:
		return constants.CompleteTxFee
	}
	return 0
}

// FormatSTX renders a micro-STX amount as STX with six decimals
func FormatSTX(microSTX int64) string {
	return decimal.New(microSTX, 0).Div(decimal.New(constants.MicroSTXPerSTX, 0)).StringFixed(6)
}

// ParseMicroSTX parses an integer micro-STX amount as returned by the API
func ParseMicroSTX(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// FormatMicroSTX renders a decimal micro-STX amount as STX with six decimals
func FormatMicroSTX(amount decimal.Decimal) string {
	return amount.Div(decimal.New(constants.MicroSTXPerSTX, 0)).StringFixed(6)
}
