// Package service orchestrates covenant and vault builds: it resolves specs,
// describes the resulting transactions and archives them.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/bitcoin"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/script"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/tree"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/vault"
	"github.com/goodnatureofminers/covenant7000/pkg/safe"
	"github.com/goodnatureofminers/covenant7000/pkg/workerpool"
	"go.uber.org/zap"
)

const defaultWorkerCount = 8

const stageCovenant = "covenant"

var ErrArchiveDisabled = errors.New("archive is not configured")

type CovenantService struct {
	logger      *zap.Logger
	metrics     Metrics
	archive     ArchiveRepository
	workerCount int
	now         func() time.Time
}

// NewCovenantService builds the service. archive may be nil, in which case
// nothing is persisted.
func NewCovenantService(logger *zap.Logger, metrics Metrics, archive ArchiveRepository) *CovenantService {
	return &CovenantService{
		logger:      logger,
		metrics:     metrics,
		archive:     archive,
		workerCount: defaultWorkerCount,
		now:         time.Now,
	}
}

// NodeSummary is one node of a resolved covenant tree.
type NodeSummary struct {
	Depth      int    `json:"depth"`
	Address    string `json:"address"`
	Commitment string `json:"commitment"`
}

// CovenantAddress describes the root of a resolved covenant tree.
type CovenantAddress struct {
	Network          model.Network `json:"network"`
	Variant          string        `json:"variant"`
	Address          string        `json:"address"`
	Commitment       string        `json:"commitment"`
	LockingScript    string        `json:"locking_script"`
	LockingScriptAsm string        `json:"locking_script_asm"`
	Nodes            []NodeSummary `json:"nodes"`
}

// SpendPlan is the set of transactions spending a covenant funding output.
type SpendPlan struct {
	Network      model.Network          `json:"network"`
	PlanID       string                 `json:"plan_id"`
	Transactions []*btcjson.TxRawResult `json:"transactions"`
}

// StagedTransaction is a described vault transaction.
type StagedTransaction struct {
	Stage string                `json:"stage"`
	Tx    *btcjson.TxRawResult `json:"tx"`
}

// VaultPlan describes a vault and its full transaction chain.
type VaultPlan struct {
	Network          model.Network       `json:"network"`
	Address          string              `json:"address"`
	UnvaultAddress   string              `json:"unvault_address"`
	VaultCommitment  string              `json:"vault_commitment"`
	HotCommitment    string              `json:"hot_commitment"`
	ColdCommitment   string              `json:"cold_commitment"`
	UnvaultScriptAsm string              `json:"unvault_script_asm"`
	Delay            uint32              `json:"delay"`
	UnvaultValue     int64               `json:"unvault_value"`
	SpendValue       int64               `json:"spend_value"`
	Transactions     []StagedTransaction `json:"transactions"`
}

// VaultRequest is one entry of a batch vault build.
type VaultRequest struct {
	Spec    model.VaultSpec
	Funding wire.OutPoint
}

// ResolveAddress resolves spec and reports its address, commitment and the
// address of every nested covenant.
func (s *CovenantService) ResolveAddress(_ context.Context, spec *model.TransactionSpec) (_ *CovenantAddress, err error) {
	start := time.Now()
	network := specNetwork(spec)
	defer func() {
		s.metrics.Observe("resolve_address", network, err, start)
	}()

	node, err := tree.Resolve(spec)
	if err != nil {
		s.logger.Warn("covenant resolution failed", zap.String("network", string(network)), zap.Error(err))
		return nil, err
	}
	asm, err := script.Disasm(node.LockingScript)
	if err != nil {
		return nil, err
	}

	var nodes []NodeSummary
	node.Walk(func(depth int, n *tree.Node) {
		nodes = append(nodes, NodeSummary{Depth: depth, Address: n.Address(), Commitment: n.Commitment.String()})
	})

	s.logger.Debug("covenant resolved",
		zap.String("address", node.Address()),
		zap.Stringer("commitment", node.Commitment),
		zap.Int("nodes", len(nodes)),
	)
	return &CovenantAddress{
		Network:          network,
		Variant:          spec.Variant.Kind.String(),
		Address:          node.Address(),
		Commitment:       node.Commitment.String(),
		LockingScript:    fmt.Sprintf("%x", node.LockingScript),
		LockingScriptAsm: asm,
		Nodes:            nodes,
	}, nil
}

// BuildSpends builds the transactions spending funding into spec. With fanOut
// every nested covenant is spent; otherwise only the chain through each
// node's first output. The result is archived under the root address.
func (s *CovenantService) BuildSpends(ctx context.Context, spec *model.TransactionSpec, funding wire.OutPoint, fanOut bool) (_ *SpendPlan, err error) {
	start := time.Now()
	network := specNetwork(spec)
	operation := "build_spends"
	if fanOut {
		operation = "build_spending_tree"
	}
	defer func() {
		s.metrics.Observe(operation, network, err, start)
	}()

	node, err := tree.Resolve(spec)
	if err != nil {
		s.logger.Warn("covenant resolution failed", zap.String("network", string(network)), zap.Error(err))
		return nil, err
	}
	var txs []*wire.MsgTx
	if fanOut {
		txs = node.SpendingTree(funding)
	} else {
		txs = node.SpendingChain(funding)
	}

	plan := &SpendPlan{Network: network, PlanID: node.Address()}
	staged := make([]stagedTx, 0, len(txs))
	for _, tx := range txs {
		desc, err := bitcoin.DescribeTransaction(tx, node.Params)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", tx.TxHash(), err)
		}
		plan.Transactions = append(plan.Transactions, desc)
		staged = append(staged, stagedTx{stage: stageCovenant, tx: tx, desc: desc})
	}
	s.metrics.ObserveTransactions(operation, network, len(txs))

	if err = s.store(ctx, network, plan.PlanID, staged); err != nil {
		return nil, err
	}

	s.logger.Info("covenant spends built",
		zap.String("plan", plan.PlanID),
		zap.String("funding", funding.String()),
		zap.Int("transactions", len(txs)),
		zap.Bool("fan_out", fanOut),
	)
	return plan, nil
}

// BuildVault creates the vault for spec and its transaction chain from funding.
func (s *CovenantService) BuildVault(ctx context.Context, spec model.VaultSpec, funding wire.OutPoint, opts ...vault.Option) (_ *VaultPlan, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe("build_vault", spec.Network, err, start)
	}()

	v, err := vault.New(spec, opts...)
	if err != nil {
		s.logger.Warn("vault rejected", zap.String("network", string(spec.Network)), zap.Error(err))
		return nil, err
	}
	asm, err := script.Disasm(v.UnvaultScript)
	if err != nil {
		return nil, err
	}

	result := &VaultPlan{
		Network:          spec.Network,
		Address:          v.Address(),
		UnvaultAddress:   v.UnvaultAddress(),
		VaultCommitment:  v.VaultCommitment.String(),
		HotCommitment:    v.HotCommitment.String(),
		ColdCommitment:   v.ColdCommitment.String(),
		UnvaultScriptAsm: asm,
		Delay:            spec.Delay,
		UnvaultValue:     v.UnvaultValue(),
		SpendValue:       v.SpendValue(),
	}

	plan := v.Plan(funding).Transactions()
	staged := make([]stagedTx, 0, len(plan))
	for _, st := range plan {
		desc, err := bitcoin.DescribeTransaction(st.Tx, v.Params)
		if err != nil {
			return nil, fmt.Errorf("describe %s transaction: %w", st.Stage, err)
		}
		result.Transactions = append(result.Transactions, StagedTransaction{Stage: string(st.Stage), Tx: desc})
		staged = append(staged, stagedTx{stage: string(st.Stage), tx: st.Tx, desc: desc})
	}
	s.metrics.ObserveTransactions("build_vault", spec.Network, len(plan))

	if err = s.store(ctx, spec.Network, result.Address, staged); err != nil {
		return nil, err
	}

	s.logger.Info("vault built",
		zap.String("address", result.Address),
		zap.String("unvault_address", result.UnvaultAddress),
		zap.Uint32("delay", spec.Delay),
		zap.Uint64("amount", spec.Amount),
	)
	return result, nil
}

// BuildVaults builds independent vaults concurrently. Results follow the
// request order; the first failure aborts the batch.
func (s *CovenantService) BuildVaults(ctx context.Context, requests []VaultRequest, opts ...vault.Option) ([]*VaultPlan, error) {
	return workerpool.Map(ctx, s.workerCount, requests, func(ctx context.Context, req VaultRequest) (*VaultPlan, error) {
		plan, err := s.BuildVault(ctx, req.Spec, req.Funding, opts...)
		if err != nil {
			return nil, fmt.Errorf("vault %s->%s: %w", req.Spec.HotAddress, req.Spec.ColdAddress, err)
		}
		return plan, nil
	})
}

// PlanTransactions loads an archived plan.
func (s *CovenantService) PlanTransactions(ctx context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	params, err := bitcoin.ChainParams(network)
	if err != nil {
		return nil, err
	}
	txs, err := s.archive.PlanTransactions(ctx, canonicalNetwork(params), planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}
	return txs, nil
}

type stagedTx struct {
	stage string
	tx    *wire.MsgTx
	desc  *btcjson.TxRawResult
}

func (s *CovenantService) store(ctx context.Context, network model.Network, planID string, staged []stagedTx) error {
	if s.archive == nil {
		return nil
	}
	params, err := bitcoin.ChainParams(network)
	if err != nil {
		return err
	}

	createdAt := s.now().UTC()
	records := make([]model.ArchivedTransaction, 0, len(staged))
	for i, st := range staged {
		position, err := safe.Uint32(i)
		if err != nil {
			return err
		}
		size, err := safe.Uint32(st.desc.Size)
		if err != nil {
			return err
		}
		inputs, err := safe.Uint32(len(st.tx.TxIn))
		if err != nil {
			return err
		}
		outputs, err := safe.Uint32(len(st.tx.TxOut))
		if err != nil {
			return err
		}
		records = append(records, model.ArchivedTransaction{
			Network:     canonicalNetwork(params),
			PlanID:      planID,
			Stage:       st.stage,
			Position:    position,
			TxID:        st.desc.Txid,
			RawHex:      st.desc.Hex,
			Size:        size,
			InputCount:  inputs,
			OutputCount: outputs,
			CreatedAt:   createdAt,
		})
	}

	if err := s.archive.InsertTransactions(ctx, records); err != nil {
		s.logger.Error("archive plan failed", zap.String("plan", planID), zap.Error(err))
		return fmt.Errorf("archive plan %s: %w", planID, err)
	}
	return nil
}

func specNetwork(spec *model.TransactionSpec) model.Network {
	if spec == nil {
		return ""
	}
	return spec.Network
}

// canonicalNetwork folds network aliases so archive keys do not depend on
// which alias the caller used.
func canonicalNetwork(params *chaincfg.Params) model.Network {
	switch params.Net {
	case chaincfg.MainNetParams.Net:
		return model.Mainnet
	case chaincfg.TestNet3Params.Net:
		return model.Testnet
	case chaincfg.SigNetParams.Net:
		return model.Signet
	case chaincfg.RegressionNetParams.Net:
		return model.Regtest
	default:
		return model.Network(params.Name)
	}
}
