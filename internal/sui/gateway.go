package sui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/unw4/TrustChain/internal/metrics"
	"github.com/unw4/TrustChain/pkg/logger"
)

// DefaultGasBudget bounds the gas spent per transaction block.
const DefaultGasBudget uint64 = 50_000_000

// Gateway is the single choke point for ledger reads and writes. It owns
// the process signing credential; callers hand it assembled transaction
// blocks and receive confirmed results. The Gateway performs no retries.
type Gateway struct {
	client    *Client
	signer    *Signer
	packageID string
	gasBudget uint64
	log       *logger.Logger
}

// GatewayConfig configures the gateway.
type GatewayConfig struct {
	Client    *Client
	Signer    *Signer
	PackageID string
	GasBudget uint64
	Logger    *logger.Logger
}

// NewGateway validates the configuration and constructs a gateway.
// A missing signer or package id is a startup failure, not a runtime one.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.Client == nil {
		return nil, InvalidParameterf("client is required")
	}
	if cfg.Signer == nil {
		return nil, InvalidParameterf("signer is required")
	}
	if cfg.PackageID == "" {
		return nil, InvalidParameterf("contract package id is required")
	}
	gasBudget := cfg.GasBudget
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("gateway")
	}
	return &Gateway{
		client:    cfg.Client,
		signer:    cfg.Signer,
		packageID: cfg.PackageID,
		gasBudget: gasBudget,
		log:       log,
	}, nil
}

// PackageID returns the contract package identifier targets are built from.
func (g *Gateway) PackageID() string {
	return g.packageID
}

// Address returns the service address that signs all submissions.
func (g *Gateway) Address() string {
	return g.signer.Address()
}

// Target builds a fully qualified call target within the contract package.
func (g *Gateway) Target(module, function string) string {
	return fmt.Sprintf("%s::%s::%s", g.packageID, module, function)
}

// Submit builds, signs, and executes a transaction block, waiting for
// confirmed effects. The block is applied atomically: either every call
// takes effect or none does. A non-success execution status is reported
// as ErrTransactionRejected.
func (g *Gateway) Submit(ctx context.Context, block *TxBuilder) (*TxResult, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := g.execute(ctx, block)
	if err != nil {
		metrics.LedgerSubmission("error", time.Since(start).Seconds())
		return nil, err
	}

	if !result.Succeeded() {
		metrics.LedgerSubmission("rejected", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s", ErrTransactionRejected, result.Effects.Status.Error)
	}

	metrics.LedgerSubmission("success", time.Since(start).Seconds())
	g.log.WithField("digest", result.Digest).
		WithField("calls", len(block.Calls())).
		Debug("transaction confirmed")
	return result, nil
}

func (g *Gateway) execute(ctx context.Context, block *TxBuilder) (*TxResult, error) {
	// Node-side build resolves object references and produces the BCS bytes
	// to sign.
	buildParams := []interface{}{g.signer.Address(), block.payload(), nil, fmt.Sprint(g.gasBudget)}
	raw, err := g.client.Call(ctx, "unsafe_batchTransaction", buildParams)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	var built struct {
		TxBytes string `json:"txBytes"`
	}
	if err := json.Unmarshal(raw, &built); err != nil {
		return nil, fmt.Errorf("unmarshal build result: %w", err)
	}
	if built.TxBytes == "" {
		return nil, fmt.Errorf("%w: node returned empty transaction bytes", ErrTransactionRejected)
	}

	signature := g.signer.Sign([]byte(built.TxBytes))

	execParams := []interface{}{
		built.TxBytes,
		[]string{signature},
		map[string]bool{
			"showEffects":       true,
			"showObjectChanges": true,
			"showEvents":        true,
		},
		"WaitForLocalExecution",
	}
	raw, err = g.client.Call(ctx, "sui_executeTransactionBlock", execParams)
	if err != nil {
		return nil, fmt.Errorf("execute transaction: %w", err)
	}

	var result TxResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal execution result: %w", err)
	}
	return &result, nil
}

// GetObject fetches one object by id.
func (g *Gateway) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	if objectID == "" {
		return nil, InvalidParameterf("object id is required")
	}
	return g.client.GetObject(ctx, objectID)
}

// GetOwnedObjects lists objects owned by an address. structType may be a
// bare module::Type suffix, which is qualified with the package id.
func (g *Gateway) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectData, error) {
	if owner == "" {
		return nil, InvalidParameterf("owner address is required")
	}
	if structType != "" && !strings.Contains(structType, "0x") {
		structType = g.packageID + "::" + structType
	}
	return g.client.GetOwnedObjects(ctx, owner, structType)
}

// QueryEvents fetches events of a move event type, newest first. The type
// may be a bare module::Event suffix qualified with the package id.
func (g *Gateway) QueryEvents(ctx context.Context, eventType string, limit int) ([]Event, error) {
	if eventType != "" && !strings.Contains(eventType, "0x") {
		eventType = g.packageID + "::" + eventType
	}
	return g.client.QueryEvents(ctx, EventFilter{MoveEventType: eventType}, limit)
}

// CreatedObjectID scans a change set for the object created with the given
// type suffix (e.g. "::aircraft::Aircraft").
func CreatedObjectID(changes []ObjectChange, typeSuffix string) (string, bool) {
	for _, change := range changes {
		if change.Type == "created" && strings.Contains(change.ObjectType, typeSuffix) {
			return change.ObjectID, true
		}
	}
	return "", false
}
