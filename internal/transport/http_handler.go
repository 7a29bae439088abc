// Package transport exposes the covenant service over HTTP/JSON.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/bitcoin"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/service"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/specfile"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/vault"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	CovenantService interface {
		ResolveAddress(ctx context.Context, spec *model.TransactionSpec) (*service.CovenantAddress, error)
		BuildSpends(ctx context.Context, spec *model.TransactionSpec, funding wire.OutPoint, fanOut bool) (*service.SpendPlan, error)
		BuildVault(ctx context.Context, spec model.VaultSpec, funding wire.OutPoint, opts ...vault.Option) (*service.VaultPlan, error)
		PlanTransactions(ctx context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error)
	}
	Metrics interface {
		Observe(route string, code int, started time.Time)
	}
)

type spendRequest struct {
	Spec    specfile.Document `json:"spec"`
	Funding string            `json:"funding"`
	FanOut  bool              `json:"fan_out"`
}

type feesDocument struct {
	Unvault uint64 `json:"unvault"`
	Spend   uint64 `json:"spend"`
}

type vaultRequest struct {
	Vault   specfile.VaultDocument `json:"vault"`
	Funding string                 `json:"funding"`
	Fees    *feesDocument          `json:"fees,omitempty"`
}

type archivedTransaction struct {
	Stage       string    `json:"stage"`
	Position    uint32    `json:"position"`
	TxID        string    `json:"txid"`
	Hex         string    `json:"hex"`
	Size        uint32    `json:"size"`
	InputCount  uint32    `json:"input_count"`
	OutputCount uint32    `json:"output_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type planResponse struct {
	Network      model.Network         `json:"network"`
	PlanID       string                `json:"plan_id"`
	Transactions []archivedTransaction `json:"transactions"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HTTPHandler serves the covenant API.
type HTTPHandler struct {
	logger  *zap.Logger
	svc     CovenantService
	metrics Metrics
}

func NewHTTPHandler(logger *zap.Logger, svc CovenantService, metrics Metrics) *HTTPHandler {
	return &HTTPHandler{logger: logger, svc: svc, metrics: metrics}
}

// Register mounts the API routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	h.handle(mux, "POST /v1/covenants/address", h.resolveAddress)
	h.handle(mux, "POST /v1/covenants/spend", h.buildSpends)
	h.handle(mux, "POST /v1/vaults", h.buildVault)
	h.handle(mux, "GET /v1/plans/{network}/{plan}", h.planTransactions)
	h.handle(mux, "GET /healthz", h.health)
}

type handlerFunc func(r *http.Request) (int, any, error)

func (h *HTTPHandler) handle(mux *http.ServeMux, pattern string, fn handlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		code, body, err := fn(r)
		if err != nil {
			code = statusOf(err)
			body = errorResponse{Error: err.Error(), Kind: model.KindOf(err).String()}
			if code >= http.StatusInternalServerError {
				h.logger.Error("request failed", zap.String("route", pattern), zap.Error(err))
			} else {
				h.logger.Debug("request rejected", zap.String("route", pattern), zap.Error(err))
			}
		}
		h.metrics.Observe(pattern, code, start)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.logger.Warn("write response", zap.String("route", pattern), zap.Error(err))
		}
	})
}

func (h *HTTPHandler) health(_ *http.Request) (int, any, error) {
	return http.StatusOK, map[string]string{"status": "ok"}, nil
}

func (h *HTTPHandler) resolveAddress(r *http.Request) (int, any, error) {
	var doc specfile.Document
	if err := decodeBody(r.Body, &doc); err != nil {
		return 0, nil, err
	}
	spec, err := doc.Spec()
	if err != nil {
		return 0, nil, err
	}
	res, err := h.svc.ResolveAddress(r.Context(), spec)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, res, nil
}

func (h *HTTPHandler) buildSpends(r *http.Request) (int, any, error) {
	var req spendRequest
	if err := decodeBody(r.Body, &req); err != nil {
		return 0, nil, err
	}
	spec, err := req.Spec.Spec()
	if err != nil {
		return 0, nil, err
	}
	funding, err := parseFunding(req.Funding)
	if err != nil {
		return 0, nil, err
	}
	plan, err := h.svc.BuildSpends(r.Context(), spec, funding, req.FanOut)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, plan, nil
}

func (h *HTTPHandler) buildVault(r *http.Request) (int, any, error) {
	var req vaultRequest
	if err := decodeBody(r.Body, &req); err != nil {
		return 0, nil, err
	}
	funding, err := parseFunding(req.Funding)
	if err != nil {
		return 0, nil, err
	}
	var opts []vault.Option
	if req.Fees != nil {
		opts = append(opts, vault.WithFees(vault.Fees{Unvault: req.Fees.Unvault, Spend: req.Fees.Spend}))
	}
	plan, err := h.svc.BuildVault(r.Context(), req.Vault.Spec(), funding, opts...)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, plan, nil
}

func (h *HTTPHandler) planTransactions(r *http.Request) (int, any, error) {
	network := model.Network(r.PathValue("network"))
	planID := r.PathValue("plan")
	txs, err := h.svc.PlanTransactions(r.Context(), network, planID)
	if err != nil {
		return 0, nil, err
	}
	if len(txs) == 0 {
		return http.StatusNotFound, errorResponse{Error: fmt.Sprintf("plan %s not found", planID), Kind: "not_found"}, nil
	}

	resp := planResponse{Network: txs[0].Network, PlanID: planID, Transactions: make([]archivedTransaction, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, archivedTransaction{
			Stage:       tx.Stage,
			Position:    tx.Position,
			TxID:        tx.TxID,
			Hex:         tx.RawHex,
			Size:        tx.Size,
			InputCount:  tx.InputCount,
			OutputCount: tx.OutputCount,
			CreatedAt:   tx.CreatedAt,
		})
	}
	return http.StatusOK, resp, nil
}

func decodeBody(body io.Reader, out any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return model.NewError(model.KindInvalidSpec, "decode request", err)
	}
	return nil
}

func parseFunding(value string) (wire.OutPoint, error) {
	op, err := bitcoin.ParseOutPoint(value)
	if err != nil {
		return wire.OutPoint{}, model.NewError(model.KindInvalidSpec, "funding", err)
	}
	return op, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, model.ErrInvalidSpec), errors.Is(err, model.ErrAddressParse):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrRecursion), errors.Is(err, model.ErrScriptBuild):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
