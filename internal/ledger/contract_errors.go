package ledger

import (
	"fmt"
	"regexp"
	"strconv"

	apperrors "github.com/julianstephens/stackspledge/internal/errors"
)

// Contract error codes returned as (err uN)
const (
	ErrCodeNotFound          uint64 = 100
	ErrCodeUnauthorized      uint64 = 101
	ErrCodeAlreadyCompleted  uint64 = 102
	ErrCodeInsufficientFunds uint64 = 103
	ErrCodeInvalidMessage    uint64 = 104
	ErrCodeMaxPledges        uint64 = 105
	ErrCodeAlreadyVouched    uint64 = 106
	ErrCodeSelfVouch         uint64 = 107
	ErrCodeMaxVouches        uint64 = 108
	ErrCodePledgeExpired     uint64 = 109
	ErrCodeContractPaused    uint64 = 110
)

var contractErrors = map[uint64]struct {
	name    string
	message string
}{
	ErrCodeNotFound:          {"ERR_NOT_FOUND", "Pledge not found"},
	ErrCodeUnauthorized:      {"ERR_UNAUTHORIZED", "Not authorized for this pledge"},
	ErrCodeAlreadyCompleted:  {"ERR_ALREADY_COMPLETED", "Pledge is already completed"},
	ErrCodeInsufficientFunds: {"ERR_INSUFFICIENT_FUNDS", "Insufficient STX balance for the fee"},
	ErrCodeInvalidMessage:    {"ERR_INVALID_MESSAGE", "Pledge message was rejected by the contract"},
	ErrCodeMaxPledges:        {"ERR_MAX_PLEDGES_REACHED", "Maximum number of pledges reached"},
	ErrCodeAlreadyVouched:    {"ERR_ALREADY_VOUCHED", "You have already vouched for this pledge"},
	ErrCodeSelfVouch:         {"ERR_SELF_VOUCH", "You cannot vouch for your own pledge"},
	ErrCodeMaxVouches:        {"ERR_MAX_VOUCHES_REACHED", "Pledge has reached the maximum number of vouches"},
	ErrCodePledgeExpired:     {"ERR_PLEDGE_EXPIRED", "Pledge has expired"},
	ErrCodeContractPaused:    {"ERR_CONTRACT_PAUSED", "The contract is paused"},
}

// ContractError is a rejection reported by the contract itself.
type ContractError struct {
	Code    uint64
	Name    string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s (err u%d)", e.Message, e.Code)
}

// Is lets contract rejections match the client-side sentinels.
func (e *ContractError) Is(target error) bool {
	switch e.Code {
	case ErrCodeNotFound:
		return target == apperrors.ErrNotFound
	case ErrCodeUnauthorized:
		return target == apperrors.ErrUnauthorized
	case ErrCodeAlreadyVouched:
		return target == apperrors.ErrDuplicateVouch
	case ErrCodeInvalidMessage:
		return target == apperrors.ErrInvalidMessage
	}
	return false
}

// ContractErrorFor returns the error for code. Unknown codes keep their number.
func ContractErrorFor(code uint64) *ContractError {
	if known, ok := contractErrors[code]; ok {
		return &ContractError{Code: code, Name: known.name, Message: known.message}
	}
	return &ContractError{Code: code, Name: "ERR_UNKNOWN", Message: "Contract rejected the call"}
}

var errCodePattern = regexp.MustCompile(`\(err u(\d+)\)|\bu(1\d\d)\b`)

// ParseContractError looks for an (err uN) marker in a gateway message.
func ParseContractError(msg string) (*ContractError, bool) {
	m := errCodePattern.FindStringSubmatch(msg)
	if m == nil {
		return nil, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	code, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return nil, false
	}
	return ContractErrorFor(code), true
}
