// Package wallet reads balances from and relays signed transactions to an
// Ethereum JSON-RPC node.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/format"
	"github.com/xtrntr/tradedesk/internal/swap"
)

var (
	ErrInvalidTransaction = errors.New("Transaction failed")
	ErrNetwork            = errors.New("Network error occurred")
)

// TokenBalance is an ERC-20 balance along with the token's decimals
type TokenBalance struct {
	Raw       *big.Int `json:"raw"`
	Decimals  uint8    `json:"decimals"`
	Formatted string   `json:"formatted"`
}

type Provider interface {
	NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, owner common.Address) (TokenBalance, error)
	Broadcast(ctx context.Context, rawTx string) (common.Hash, error)
}

// Backend is the subset of ethclient.Client the provider needs
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type EthProvider struct {
	backend Backend
	logger  logrus.FieldLogger
}

// Dial connects to the node at url
func Dial(ctx context.Context, url string, logger logrus.FieldLogger) (*EthProvider, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewEthProvider(client, logger), nil
}

func NewEthProvider(backend Backend, logger logrus.FieldLogger) *EthProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EthProvider{backend: backend, logger: logger.WithField("component", "wallet")}
}

func (p *EthProvider) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	bal, err := p.backend.BalanceAt(ctx, owner, nil)
	if err != nil {
		p.logger.WithError(err).WithField("owner", owner.Hex()).Warn("balance lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return bal, nil
}

func (p *EthProvider) TokenBalance(ctx context.Context, token, owner common.Address) (TokenBalance, error) {
	var bal *big.Int
	if err := p.call(ctx, token, "balanceOf", &bal, owner); err != nil {
		return TokenBalance{}, err
	}
	var decimals uint8
	if err := p.call(ctx, token, "decimals", &decimals); err != nil {
		return TokenBalance{}, err
	}
	return TokenBalance{
		Raw:       bal,
		Decimals:  decimals,
		Formatted: format.FormatUnits(bal, int(decimals)),
	}, nil
}

// Broadcast relays an already signed, hex-encoded transaction. It does not
// wait for the transaction to be mined.
func (p *EthProvider) Broadcast(ctx context.Context, rawTx string) (common.Hash, error) {
	raw, err := hexutil.Decode(rawTx)
	if err != nil {
		return common.Hash{}, ErrInvalidTransaction
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, ErrInvalidTransaction
	}
	if err := p.backend.SendTransaction(ctx, tx); err != nil {
		p.logger.WithError(err).WithField("tx", tx.Hash().Hex()).Error("broadcast failed")
		return common.Hash{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	p.logger.WithField("tx", tx.Hash().Hex()).Info("transaction broadcast")
	return tx.Hash(), nil
}

func (p *EthProvider) call(ctx context.Context, token common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := swap.ERC20ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	res, err := p.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{"token": token.Hex(), "method": method}).Warn("contract call failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := swap.ERC20ABI.UnpackIntoInterface(out, method, res); err != nil {
		return fmt.Errorf("unpack %s: %w", method, err)
	}
	return nil
}
