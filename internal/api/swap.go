package api

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/xtrntr/tradedesk/internal/chain"
	"github.com/xtrntr/tradedesk/internal/format"
	"github.com/xtrntr/tradedesk/internal/swap"
	"github.com/xtrntr/tradedesk/internal/wallet"
)

const (
	defaultChainID = 1
	maxDecimals    = 77
)

// swapError maps builder errors to responses; anything unexpected is logged
// and reported as fallback
func (h *Handler) swapError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, swap.ErrWalletNotConnected):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, swap.ErrInvalidAmount),
		errors.Is(err, swap.ErrInvalidAddress),
		errors.Is(err, swap.ErrInvalidSlippage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.WithError(err).Error("failed to build contract call")
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// tokenDecimals returns the given decimals, or those of token when it is
// listed on chainID. ok is false after an error response was written.
func tokenDecimals(w http.ResponseWriter, decimals *int, token string, chainID int64) (int, bool) {
	if decimals != nil {
		if *decimals < 0 || *decimals > maxDecimals {
			writeError(w, http.StatusBadRequest, "Invalid decimals")
			return 0, false
		}
		return *decimals, true
	}
	if chainID == 0 {
		chainID = defaultChainID
	}
	t, ok := chain.TokenByAddress(token, chainID)
	if !ok {
		writeError(w, http.StatusBadRequest, "decimals is required for unlisted tokens")
		return 0, false
	}
	return t.Decimals, true
}

// Quote estimates the output of a swap. The quote is null for a zero or
// empty amount.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quote": swap.Quote(req.Amount)})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decode(w, r, &req) {
		return
	}
	decimals, ok := tokenDecimals(w, req.Decimals, req.Token, req.ChainID)
	if !ok {
		return
	}
	call, err := h.Swaps.Approve(req.Owner, req.Token, req.Amount, decimals)
	if err != nil {
		h.swapError(w, err, "Token approval failed")
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *Handler) Swap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !decode(w, r, &req) {
		return
	}
	decimals, ok := tokenDecimals(w, req.Decimals, req.FromToken, req.ChainID)
	if !ok {
		return
	}
	call, err := h.Swaps.Swap(req.Owner, swap.Params{
		FromToken: req.FromToken,
		ToToken:   req.ToToken,
		Amount:    req.Amount,
		Slippage:  req.Slippage,
		Decimals:  decimals,
	}, h.Now())
	if err != nil {
		h.swapError(w, err, "Swap transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *Handler) SwapETH(w http.ResponseWriter, r *http.Request) {
	var req swapETHRequest
	if !decode(w, r, &req) {
		return
	}
	call, err := h.Swaps.SwapETHForTokens(req.Owner, req.ToToken, req.Amount, req.Slippage, h.Now())
	if err != nil {
		h.swapError(w, err, "Swap transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, call)
}

// walletAddress parses the {address} path parameter and checks a provider
// is configured
func (h *Handler) walletAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	addr := chi.URLParam(r, "address")
	if !format.IsValidAddress(addr) {
		writeError(w, http.StatusBadRequest, swap.ErrInvalidAddress.Error())
		return common.Address{}, false
	}
	if h.Wallet == nil {
		writeError(w, http.StatusServiceUnavailable, wallet.ErrNetwork.Error())
		return common.Address{}, false
	}
	return common.HexToAddress(addr), true
}

// GetBalance reports the native balance, or an ERC-20 balance when ?token=
// is given
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.walletAddress(w, r)
	if !ok {
		return
	}

	if token := r.URL.Query().Get("token"); token != "" {
		if !format.IsValidAddress(token) {
			writeError(w, http.StatusBadRequest, swap.ErrInvalidAddress.Error())
			return
		}
		bal, err := h.Wallet.TokenBalance(r.Context(), common.HexToAddress(token), owner)
		if err != nil {
			writeError(w, http.StatusBadGateway, wallet.ErrNetwork.Error())
			return
		}
		writeJSON(w, http.StatusOK, bal)
		return
	}

	wei, err := h.Wallet.NativeBalance(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusBadGateway, wallet.ErrNetwork.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address":   owner.Hex(),
		"balance":   wei.String(),
		"formatted": format.WeiToEther(wei, 4),
	})
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.walletAddress(w, r)
	if !ok {
		return
	}
	wei, err := h.Wallet.NativeBalance(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusBadGateway, wallet.ErrNetwork.Error())
		return
	}
	writeJSON(w, http.StatusOK, wallet.BuildPortfolio(wei))
}

// Broadcast relays a transaction the wallet has already signed
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if !decode(w, r, &req) {
		return
	}
	if h.Wallet == nil {
		writeError(w, http.StatusServiceUnavailable, wallet.ErrNetwork.Error())
		return
	}
	hash, err := h.Wallet.Broadcast(r.Context(), req.RawTx)
	switch {
	case errors.Is(err, wallet.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, wallet.ErrNetwork.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"hash": hash.Hex()})
	}
}
