package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/stackspledge/internal/config"
	"github.com/julianstephens/stackspledge/internal/constants"
	apperrors "github.com/julianstephens/stackspledge/internal/errors"
	"github.com/julianstephens/stackspledge/internal/logger"
	"github.com/julianstephens/stackspledge/internal/models"
)

// JSON-RPC methods exposed by the gateway
const (
	MethodRead      = "contract_call_read"
	MethodBroadcast = "contract_call_broadcast"
)

// Client implements Ledger and BalanceReader over the gateway's JSON-RPC API
// and the public account API.
type Client struct {
	gatewayURL      string
	apiURL          string
	contractAddress string
	contractName    string
	apiKey          string
	client          *http.Client
}

// NewClient builds a client for the contract named in cfg. apiKey may be empty.
func NewClient(cfg config.Config, apiKey string) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Client{
		gatewayURL:      cfg.GatewayURL,
		apiURL:          strings.TrimRight(cfg.APIURL, "/"),
		contractAddress: cfg.ContractAddress,
		contractName:    cfg.ContractName,
		apiKey:          apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type callParams struct {
	ContractAddress   string  `json:"contract_address"`
	ContractName      string  `json:"contract_name"`
	FunctionName      string  `json:"function_name"`
	Arguments         []Value `json:"arguments"`
	Sender            string  `json:"sender"`
	Fee               int64   `json:"fee,omitempty"`
	AnchorMode        string  `json:"anchor_mode,omitempty"`
	PostConditionMode string  `json:"post_condition_mode,omitempty"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	if len(e.Data) > 0 && string(e.Data) != "null" {
		return fmt.Sprintf("RPC error %d: %s (%s)", e.Code, e.Message, strings.Trim(string(e.Data), `"`))
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// call performs one JSON-RPC request and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	reqBytes, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RPC request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build RPC request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send RPC request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPC response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %s: %s", resp.Status, strings.TrimSpace(string(respBytes)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse RPC response: %w (body: %s)", err, string(respBytes))
	}

	if rpcResp.Error != nil {
		if ce, ok := ParseContractError(rpcResp.Error.Message + " " + string(rpcResp.Error.Data)); ok {
			return nil, ce
		}
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func (c *Client) read(ctx context.Context, function string, args ...Value) (Value, json.RawMessage, error) {
	if args == nil {
		args = []Value{}
	}
	raw, err := c.call(ctx, MethodRead, callParams{
		ContractAddress: c.contractAddress,
		ContractName:    c.contractName,
		FunctionName:    function,
		Arguments:       args,
		Sender:          c.contractAddress,
	})
	if err != nil {
		return Value{}, nil, apperrors.Remote(function, err)
	}

	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, nil, apperrors.Remote(function, fmt.Errorf("decode result: %w", err))
	}
	return v, raw, nil
}

func (c *Client) broadcast(ctx context.Context, action models.Action, sender string, args ...Value) (string, error) {
	op := string(action)
	raw, err := c.call(ctx, MethodBroadcast, callParams{
		ContractAddress:   c.contractAddress,
		ContractName:      c.contractName,
		FunctionName:      op,
		Arguments:         args,
		Sender:            sender,
		Fee:               action.TxFee(),
		AnchorMode:        "any",
		PostConditionMode: "allow",
	})
	if err != nil {
		logger.Warn("Contract call rejected", "function", op, "sender", sender, "error", err)
		return "", apperrors.Remote(op, err)
	}

	var result struct {
		TxID   string `json:"txid"`
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", apperrors.Remote(op, fmt.Errorf("decode broadcast result: %w", err))
	}
	if result.Error != "" {
		msg := strings.TrimSpace(result.Error + " " + result.Reason)
		if ce, ok := ParseContractError(msg); ok {
			return "", apperrors.Remote(op, ce)
		}
		return "", apperrors.Remote(op, fmt.Errorf("broadcast rejected: %s", msg))
	}
	if result.TxID == "" {
		return "", apperrors.Remote(op, fmt.Errorf("broadcast returned no transaction id"))
	}

	logger.Debug("Contract call broadcast", "function", op, "sender", sender, "txid", result.TxID)
	return result.TxID, nil
}

func (c *Client) GetPledgeCount(ctx context.Context) (uint64, error) {
	v, _, err := c.read(ctx, FnGetPledgeCount)
	if err != nil {
		return 0, err
	}
	if v, err = v.Unwrap(); err != nil {
		return 0, apperrors.Remote(FnGetPledgeCount, err)
	}
	n, err := v.AsUint()
	if err != nil {
		return 0, apperrors.Remote(FnGetPledgeCount, err)
	}
	return n, nil
}

func (c *Client) GetPledge(ctx context.Context, id uint64) (*models.Pledge, error) {
	_, raw, err := c.read(ctx, FnGetPledge, Uint(id))
	if err != nil {
		return nil, err
	}
	p, found, err := DecodePledge(id, raw)
	if err != nil {
		return nil, apperrors.Remote(FnGetPledge, err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (c *Client) HasVouched(ctx context.Context, id uint64, voucher string) (bool, error) {
	v, _, err := c.read(ctx, FnHasVouched, Uint(id), Principal(voucher))
	if err != nil {
		return false, err
	}
	if v, err = v.Unwrap(); err != nil {
		return false, apperrors.Remote(FnHasVouched, err)
	}
	ok, err := v.AsBool()
	if err != nil {
		return false, apperrors.Remote(FnHasVouched, err)
	}
	return ok, nil
}

func (c *Client) CreatePledge(ctx context.Context, sender, message string, category models.Category) (string, error) {
	return c.broadcast(ctx, models.ActionCreate, sender, StringUTF8(message), StringASCII(category.Truncated()))
}

func (c *Client) VouchForPledge(ctx context.Context, sender string, id uint64) (string, error) {
	return c.broadcast(ctx, models.ActionVouch, sender, Uint(id))
}

func (c *Client) CompletePledge(ctx context.Context, sender string, id uint64) (string, error) {
	return c.broadcast(ctx, models.ActionComplete, sender, Uint(id))
}

// Balance returns the account's STX balance in micro-STX.
func (c *Client) Balance(ctx context.Context, address string) (int64, error) {
	endpoint := fmt.Sprintf("%s/extended/v1/address/%s/stx", c.apiURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build balance request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, apperrors.Remote("balance", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Remote("balance", fmt.Errorf("account API returned %s", resp.Status))
	}

	var body struct {
		Balance string `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, apperrors.Remote("balance", fmt.Errorf("decode balance: %w", err))
	}
	n, err := strconv.ParseInt(body.Balance, 10, 64)
	if err != nil {
		return 0, apperrors.Remote("balance", fmt.Errorf("invalid balance %q", body.Balance))
	}
	return n, nil
}

// BalanceOrZero logs lookup failures and reports a zero balance instead.
func BalanceOrZero(ctx context.Context, r BalanceReader, address string) int64 {
	n, err := r.Balance(ctx, address)
	if err != nil {
		logger.Warn("Failed to fetch balance", "address", address, "error", err)
		return 0
	}
	return n
}

var _ Ledger = (*Client)(nil)
var _ BalanceReader = (*Client)(nil)
