package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fundingTxID = strings.Repeat("ab", 32)

func signetAddress(t *testing.T, seed byte) string {
	t.Helper()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(bytes.Repeat([]byte{seed}, 20), &chaincfg.SigNetParams)
	require.NoError(t, err)
	return addr.EncodeAddress()
}

func newServer(t *testing.T) (*httptest.Server, *MockCovenantService, *MockMetrics) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := NewMockCovenantService(ctrl)
	metrics := NewMockMetrics(ctrl)

	mux := http.NewServeMux()
	NewHTTPHandler(zap.NewNop(), svc, metrics).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc, metrics
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestResolveAddressRoute(t *testing.T) {
	srv, svc, metrics := newServer(t)
	addr := signetAddress(t, 0x01)

	svc.EXPECT().ResolveAddress(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, spec *model.TransactionSpec) (*service.CovenantAddress, error) {
			assert.Equal(t, model.Signet, spec.Network)
			require.Len(t, spec.Fields.Outputs, 1)
			assert.Equal(t, model.AddressOutput{Address: addr, Value: 1000}, spec.Fields.Outputs[0])
			return &service.CovenantAddress{Network: model.Signet, Address: "tb1qcovenant"}, nil
		})
	metrics.EXPECT().Observe("POST /v1/covenants/address", http.StatusOK, gomock.Any())

	body := fmt.Sprintf(`{"network":"signet","outputs":[{"address":%q,"value":1000}]}`, addr)
	resp, out := post(t, srv.URL+"/v1/covenants/address", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "tb1qcovenant", out["address"])
}

func TestSpendRoute(t *testing.T) {
	srv, svc, metrics := newServer(t)
	addr := signetAddress(t, 0x02)

	svc.EXPECT().BuildSpends(gomock.Any(), gomock.Any(), gomock.Any(), true).DoAndReturn(
		func(_ any, _ *model.TransactionSpec, funding wire.OutPoint, _ bool) (*service.SpendPlan, error) {
			assert.Equal(t, fundingTxID, funding.Hash.String())
			assert.Equal(t, uint32(3), funding.Index)
			return &service.SpendPlan{Network: model.Signet, PlanID: "tb1qplan"}, nil
		})
	metrics.EXPECT().Observe("POST /v1/covenants/spend", http.StatusOK, gomock.Any())

	body := fmt.Sprintf(`{"spec":{"network":"signet","outputs":[{"address":%q,"value":1000}]},"funding":"%s:3","fan_out":true}`, addr, fundingTxID)
	resp, out := post(t, srv.URL+"/v1/covenants/spend", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tb1qplan", out["plan_id"])
}

func TestVaultRoute(t *testing.T) {
	srv, svc, metrics := newServer(t)

	svc.EXPECT().BuildVault(gomock.Any(), model.VaultSpec{
		HotAddress:  "tb1qhot",
		ColdAddress: "tb1qcold",
		Amount:      100_000,
		Network:     model.Testnet,
		Delay:       144,
	}, gomock.Any(), gomock.Any()).Return(&service.VaultPlan{Address: "tb1qvault"}, nil)
	metrics.EXPECT().Observe("POST /v1/vaults", http.StatusOK, gomock.Any())

	body := fmt.Sprintf(`{"vault":{"network":"testnet","hot":"tb1qhot","cold":"tb1qcold","amount":100000,"delay":144},"funding":"%s:0","fees":{"unvault":1000,"spend":2000}}`, fundingTxID)
	resp, out := post(t, srv.URL+"/v1/vaults", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tb1qvault", out["address"])
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		setup      func(svc *MockCovenantService)
		wantStatus int
		wantKind   string
	}{
		{
			name:       "malformed json",
			path:       "/v1/covenants/address",
			body:       `{"network":`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_spec",
		},
		{
			name:       "unknown field",
			path:       "/v1/covenants/address",
			body:       `{"network":"signet","bogus":1,"outputs":[]}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_spec",
		},
		{
			name:       "bad funding",
			path:       "/v1/vaults",
			body:       `{"vault":{"network":"testnet"},"funding":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_spec",
		},
		{
			name: "address parse",
			path: "/v1/covenants/address",
			body: `{"network":"signet","outputs":[{"address":"bad","value":1}]}`,
			setup: func(svc *MockCovenantService) {
				svc.EXPECT().ResolveAddress(gomock.Any(), gomock.Any()).
					Return(nil, model.Errorf(model.KindAddressParse, "decode address", "bad"))
			},
			wantStatus: http.StatusBadRequest,
			wantKind:   "address_parse",
		},
		{
			name: "recursion",
			path: "/v1/covenants/address",
			body: `{"network":"signet","outputs":[]}`,
			setup: func(svc *MockCovenantService) {
				svc.EXPECT().ResolveAddress(gomock.Any(), gomock.Any()).
					Return(nil, model.Errorf(model.KindRecursion, "resolve subtree", "depth 1"))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "recursion",
		},
		{
			name: "internal",
			path: "/v1/covenants/address",
			body: `{"network":"signet","outputs":[]}`,
			setup: func(svc *MockCovenantService) {
				svc.EXPECT().ResolveAddress(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantKind:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, svc, metrics := newServer(t)
			if tt.setup != nil {
				tt.setup(svc)
			}
			metrics.EXPECT().Observe(gomock.Any(), tt.wantStatus, gomock.Any())

			resp, out := post(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantKind, out["kind"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestPlanRoute(t *testing.T) {
	srv, svc, metrics := newServer(t)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	svc.EXPECT().PlanTransactions(gomock.Any(), model.Network("signet"), "tb1qplan").Return([]model.ArchivedTransaction{
		{Network: model.Signet, PlanID: "tb1qplan", Stage: "vault", Position: 0, TxID: "aa", RawHex: "0200", CreatedAt: created},
		{Network: model.Signet, PlanID: "tb1qplan", Stage: "unvault", Position: 1, TxID: "bb", RawHex: "0201", CreatedAt: created},
	}, nil)
	svc.EXPECT().PlanTransactions(gomock.Any(), model.Network("signet"), "tb1qmissing").Return(nil, nil)
	svc.EXPECT().PlanTransactions(gomock.Any(), model.Network("signet"), "tb1qoff").Return(nil, service.ErrArchiveDisabled)
	metrics.EXPECT().Observe("GET /v1/plans/{network}/{plan}", http.StatusOK, gomock.Any())
	metrics.EXPECT().Observe("GET /v1/plans/{network}/{plan}", http.StatusNotFound, gomock.Any())
	metrics.EXPECT().Observe("GET /v1/plans/{network}/{plan}", http.StatusNotImplemented, gomock.Any())

	resp, err := http.Get(srv.URL + "/v1/plans/signet/tb1qplan")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var plan planResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	assert.Equal(t, model.Signet, plan.Network)
	require.Len(t, plan.Transactions, 2)
	assert.Equal(t, "unvault", plan.Transactions[1].Stage)
	assert.Equal(t, "0201", plan.Transactions[1].Hex)
	assert.True(t, created.Equal(plan.Transactions[0].CreatedAt))

	missing, err := http.Get(srv.URL + "/v1/plans/signet/tb1qmissing")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	off, err := http.Get(srv.URL + "/v1/plans/signet/tb1qoff")
	require.NoError(t, err)
	defer off.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, off.StatusCode)
}

func TestHealthAndMethods(t *testing.T) {
	srv, _, metrics := newServer(t)
	metrics.EXPECT().Observe("GET /healthz", http.StatusOK, gomock.Any())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	wrong, err := http.Get(srv.URL + "/v1/vaults")
	require.NoError(t, err)
	defer wrong.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, wrong.StatusCode)
}
