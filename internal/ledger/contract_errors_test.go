package ledger

import (
	"errors"
	"testing"

	apperrors "github.com/julianstephens/stackspledge/internal/errors"
)

func TestParseContractError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantCode uint64
		wantOK   bool
	}{
		{name: "err marker", msg: "transaction rejected: (err u106)", wantCode: 106, wantOK: true},
		{name: "bare code", msg: "abort_by_response u110", wantCode: 110, wantOK: true},
		{name: "unknown code", msg: "(err u999)", wantCode: 999, wantOK: true},
		{name: "no code", msg: "NotEnoughFunds", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, ok := ParseContractError(tt.msg)
			if ok != tt.wantOK {
				t.Fatalf("ParseContractError(%q) ok = %v, want %v", tt.msg, ok, tt.wantOK)
			}
			if ok && ce.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", ce.Code, tt.wantCode)
			}
		})
	}
}

func TestContractError_MatchesSentinels(t *testing.T) {
	tests := []struct {
		code   uint64
		target error
	}{
		{ErrCodeNotFound, apperrors.ErrNotFound},
		{ErrCodeUnauthorized, apperrors.ErrUnauthorized},
		{ErrCodeAlreadyVouched, apperrors.ErrDuplicateVouch},
		{ErrCodeInvalidMessage, apperrors.ErrInvalidMessage},
	}
	for _, tt := range tests {
		err := apperrors.Remote("call", ContractErrorFor(tt.code))
		if !errors.Is(err, tt.target) {
			t.Errorf("u%d should match %v", tt.code, tt.target)
		}
	}

	paused := apperrors.Remote("call", ContractErrorFor(ErrCodeContractPaused))
	if errors.Is(paused, apperrors.ErrNotFound) {
		t.Error("u110 should not match ErrNotFound")
	}
	if got := apperrors.Notice(paused, "failed"); got != "The contract is paused (err u110)" {
		t.Errorf("Notice() = %q", got)
	}
}
