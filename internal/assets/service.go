// Package assets translates domain intents into ledger transactions: one
// intent, one atomic transaction block, submitted through the gateway.
package assets

import (
	"context"
	"time"

	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/internal/scheduler"
	"github.com/unw4/TrustChain/internal/sui"
	"github.com/unw4/TrustChain/pkg/logger"
)

// Gateway is the ledger surface the command handlers depend on.
type Gateway interface {
	Submit(ctx context.Context, block *sui.TxBuilder) (*sui.TxResult, error)
	GetObject(ctx context.Context, objectID string) (*sui.ObjectData, error)
	GetOwnedObjects(ctx context.Context, owner, structType string) ([]sui.ObjectData, error)
	QueryEvents(ctx context.Context, eventType string, limit int) ([]sui.Event, error)
	Target(module, function string) string
	Address() string
}

// CommandResult reports a confirmed command: the transaction digest and,
// for creation commands, the new object's identifier.
type CommandResult struct {
	Success  bool   `json:"success"`
	Digest   string `json:"digest"`
	ObjectID string `json:"objectId,omitempty"`
}

// Service bundles the per-asset-type command handlers.
type Service struct {
	gw    Gateway
	hub   *fanout.Hub
	sched *scheduler.Scheduler
	log   *logger.Logger
	now   func() time.Time
}

// New creates the command service.
func New(gw Gateway, hub *fanout.Hub, sched *scheduler.Scheduler, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("assets")
	}
	return &Service{
		gw:    gw,
		hub:   hub,
		sched: sched,
		log:   log,
		now:   time.Now,
	}
}

// fields extracts the content fields of an object, tolerating objects
// fetched without content.
func fields(obj *sui.ObjectData) []byte {
	if obj == nil || obj.Content == nil {
		return nil
	}
	return obj.Content.Fields
}

func (s *Service) nowMillis() uint64 {
	return uint64(s.now().UnixMilli())
}
