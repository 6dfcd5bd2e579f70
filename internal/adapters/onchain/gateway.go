package onchain

// gateway.go — read-only client for the Syncial PredictionMarketplace
// contract on Polygon.
//
// The gateway issues three view calls:
//   - pollCount()            → total number of polls ever created
//   - getUserBets(id, user)  → raw YES/NO stakes (scale 1e8)
//   - polls(id)              → the poll struct as a positional tuple
//
// The polls() tuple layout is a versioned wire contract. Fields are decoded
// strictly by position: question, creator, endTime, asset, createdAt,
// targetPrice, maxPriceDuringPoll, totalYes, totalNo, isResolved. Never
// infer the layout from field names.

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

const (
	// Public Polygon RPCs allow ~40 req/s; stay well under to survive the
	// per-poll fan-out of a full cycle.
	rpcRatePerSec = 25
	rpcRateBurst  = 10
)

var marketABI abi.ABI

func init() {
	var err error
	marketABI, err = abi.JSON(strings.NewReader(`[
		{
			"name": "pollCount",
			"type": "function",
			"inputs": [],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "getUserBets",
			"type": "function",
			"inputs": [
				{"name": "pollId", "type": "uint256"},
				{"name": "user", "type": "address"}
			],
			"outputs": [
				{"name": "yesAmount", "type": "uint256"},
				{"name": "noAmount", "type": "uint256"}
			]
		},
		{
			"name": "polls",
			"type": "function",
			"inputs": [{"name": "", "type": "uint256"}],
			"outputs": [
				{"name": "question", "type": "string"},
				{"name": "creator", "type": "address"},
				{"name": "endTime", "type": "uint256"},
				{"name": "asset", "type": "string"},
				{"name": "createdAt", "type": "uint256"},
				{"name": "targetPrice", "type": "uint256"},
				{"name": "maxPriceDuringPoll", "type": "uint256"},
				{"name": "totalYes", "type": "uint256"},
				{"name": "totalNo", "type": "uint256"},
				{"name": "isResolved", "type": "bool"}
			]
		}
	]`))
	if err != nil {
		panic("market abi parse: " + err.Error())
	}
}

// contractCaller is the slice of ethclient.Client the gateway needs.
// Narrowing it keeps the decode path testable without a live RPC.
type contractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Gateway implements ports.Ledger against the deployed contract.
type Gateway struct {
	caller   contractCaller
	contract common.Address
	limiter  *rate.Limiter
}

// NewGateway dials the given Polygon RPC and binds the contract address.
func NewGateway(rpcURL, contractAddr string) (*Gateway, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("onchain.NewGateway: invalid contract address %q", contractAddr)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("onchain.NewGateway: dial rpc %s: %w", rpcURL, err)
	}

	return newGateway(client, contractAddr), nil
}

func newGateway(caller contractCaller, contractAddr string) *Gateway {
	return &Gateway{
		caller:   caller,
		contract: common.HexToAddress(contractAddr),
		limiter:  rate.NewLimiter(rpcRatePerSec, rpcRateBurst),
	}
}

// PollCount returns the total number of polls ever created.
func (g *Gateway) PollCount(ctx context.Context) (uint64, error) {
	vals, err := g.call(ctx, "pollCount")
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("onchain.PollCount: unexpected output arity %d", len(vals))
	}
	count, ok := vals[0].(*big.Int)
	if !ok || !count.IsUint64() {
		return 0, fmt.Errorf("onchain.PollCount: malformed count %v", vals[0])
	}
	return count.Uint64(), nil
}

// UserWager returns the user's raw YES/NO stakes for the given poll.
func (g *Gateway) UserWager(ctx context.Context, id uint64, user string) (domain.Wager, error) {
	if !common.IsHexAddress(user) {
		return domain.Wager{}, fmt.Errorf("onchain.UserWager: invalid user address %q", user)
	}

	vals, err := g.call(ctx, "getUserBets", new(big.Int).SetUint64(id), common.HexToAddress(user))
	if err != nil {
		return domain.Wager{}, err
	}
	if len(vals) != 2 {
		return domain.Wager{}, fmt.Errorf("onchain.UserWager: poll %d: unexpected output arity %d", id, len(vals))
	}

	yes, err := amountAt(vals, 0)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("onchain.UserWager: poll %d: yes: %w", id, err)
	}
	no, err := amountAt(vals, 1)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("onchain.UserWager: poll %d: no: %w", id, err)
	}

	return domain.Wager{PollID: id, Yes: yes, No: no}, nil
}

// Poll fetches and decodes the poll tuple at the given index.
func (g *Gateway) Poll(ctx context.Context, id uint64) (domain.Poll, error) {
	vals, err := g.call(ctx, "polls", new(big.Int).SetUint64(id))
	if err != nil {
		return domain.Poll{}, err
	}
	if len(vals) != 10 {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: unexpected output arity %d", id, len(vals))
	}

	question, ok := vals[0].(string)
	if !ok {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: question is %T", id, vals[0])
	}

	// Slots 1 (creator), 3 (asset) and 4 (createdAt) are part of the wire
	// layout but unused by settlement.
	endTime, ok := vals[2].(*big.Int)
	if !ok || !endTime.IsInt64() {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: malformed endTime %v", id, vals[2])
	}

	targetPrice, err := amountAt(vals, 5)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: targetPrice: %w", id, err)
	}
	maxPrice, err := amountAt(vals, 6)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: maxPrice: %w", id, err)
	}
	totalYes, err := amountAt(vals, 7)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: totalYes: %w", id, err)
	}
	totalNo, err := amountAt(vals, 8)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: totalNo: %w", id, err)
	}

	resolved, ok := vals[9].(bool)
	if !ok {
		return domain.Poll{}, fmt.Errorf("onchain.Poll: poll %d: isResolved is %T", id, vals[9])
	}

	return domain.Poll{
		ID:          id,
		Question:    question,
		EndTime:     endTime.Int64(),
		TargetPrice: targetPrice,
		MaxPrice:    maxPrice,
		TotalYes:    totalYes,
		TotalNo:     totalNo,
		Resolved:    resolved,
	}, nil
}

// call packs, rate-limits, executes and unpacks a single view call.
func (g *Gateway) call(ctx context.Context, method string, args ...any) ([]any, error) {
	callData, err := marketABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("onchain: pack %s: %w", method, err)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("onchain: rate limiter: %w", err)
	}

	result, err := g.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &g.contract,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("onchain: call %s: %w", method, err)
	}

	vals, err := marketABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("onchain: unpack %s: %w", method, err)
	}
	return vals, nil
}

// amountAt narrows a uint256 output to a ledger Amount, rejecting values
// outside int64 range.
func amountAt(vals []any, i int) (domain.Amount, error) {
	v, ok := vals[i].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("output %d is %T, want *big.Int", i, vals[i])
	}
	return domain.AmountFromBig(v)
}
