package posting

import (
	"context"
	"fmt"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/security"
	"valora/internal/core/tenant"
	"valora/internal/core/tx"
	"valora/internal/domain/ledger"
	"valora/pkg/logger"
)

// LogConsumer receives the stock log rows a posting produced, inside the
// posting transaction. Goods registration (sale-order fulfillment) is the
// one consumer today.
type LogConsumer interface {
	ConsumeStockLogs(ctx context.Context, logs []*entity.StockLog) error
}

// AuditFunc records a posting event in the audit trail. Wired to the
// storage audit service at startup; failures are logged, not propagated,
// since the posting itself already committed.
type AuditFunc func(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error

// Event describes a document lifecycle fact. Events are published inside
// the posting transaction through the transactional outbox, so a committed
// posting always has its event and a rolled-back one never does.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher writes events to the outbox. May be nil when event
// publishing is not configured.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

// Engine posts and unposts documents.
type Engine struct {
	ledger    *ledger.Engine
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	audit     AuditFunc
	events    EventPublisher
	policy    security.PostingPolicy
	consumers []LogConsumer
}

// NewEngine creates a posting engine. audit may be nil.
func NewEngine(ledgerEngine *ledger.Engine, txManager tx.Manager, audit AuditFunc) *Engine {
	return &Engine{
		ledger:    ledgerEngine,
		txManager: txManager,
		audit:     audit,
	}
}

// RegisterConsumer adds a stock log consumer. Not safe for concurrent use;
// call during wiring only.
func (e *Engine) RegisterConsumer(c LogConsumer) {
	e.consumers = append(e.consumers, c)
}

// SetEventPublisher wires outbox publishing. Call during wiring only.
func (e *Engine) SetEventPublisher(p EventPublisher) {
	e.events = p
}

// SetPolicy wires a posting policy checked before every post and unpost.
// Call during wiring only. nil disables the check.
func (e *Engine) SetPolicy(p security.PostingPolicy) {
	e.policy = p
}

func (e *Engine) getTxManager(ctx context.Context) (tx.Manager, error) {
	if e.txManager != nil {
		return e.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

func (e *Engine) publishEvent(ctx context.Context, doc Postable, eventType string, logCount int) error {
	if e.events == nil {
		return nil
	}
	return e.events.PublishEvent(ctx, Event{
		AggregateType: doc.GetDocumentType(),
		AggregateID:   doc.GetID(),
		EventType:     eventType,
		Payload: map[string]any{
			"number":     doc.GetNumber(),
			"date":       doc.GetDate(),
			"stock_logs": logCount,
		},
	})
}

func docRef(doc Postable) ledger.DocumentRef {
	return ledger.DocumentRef{
		ID:    doc.GetID(),
		Type:  doc.GetDocumentType(),
		Code:  doc.GetNumber(),
		Title: doc.GetDocumentType() + " " + doc.GetNumber(),
	}
}

// Post validates the document, saves it via updateDoc and records its
// movements in the ledger, all in one transaction. A document that is
// already posted must be unposted first; the ledger is append-only and
// reposting would double its effect.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeDocumentPosted,
			"document is already posted, unpost first").
			WithDetail("document_id", doc.GetID().String())
	}
	if err := doc.CanPost(ctx); err != nil {
		return err
	}
	if e.policy != nil {
		if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}
	scope := doc.GetScope()
	if err := scope.Validate(); err != nil {
		return err
	}

	movements, err := doc.ProjectMovements(ctx)
	if err != nil {
		return fmt.Errorf("project movements: %w", err)
	}

	var opts ledger.LogOptions
	if init, ok := doc.(BalanceInitializer); ok && init.InitializesBalance() {
		opts.BalanceInit = true
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return err
	}

	var logs []*entity.StockLog
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		logs, err = e.ledger.Log(ctx, scope, docRef(doc), doc.GetDate(), movements, opts)
		if err != nil {
			return err
		}

		for _, c := range e.consumers {
			if err := c.ConsumeStockLogs(ctx, logs); err != nil {
				return fmt.Errorf("stock log consumer: %w", err)
			}
		}

		return e.publishEvent(ctx, doc, "DocumentPosted", len(logs))
	})
	if err != nil {
		return err
	}

	e.recordAudit(ctx, doc, "post", len(logs))
	logger.Info(ctx, "document posted",
		"document_id", doc.GetID(),
		"document_type", doc.GetDocumentType(),
		"number", doc.GetNumber(),
		"stock_logs", len(logs),
	)
	return nil
}

// Unpost reverses the document's ledger effect with offsetting log rows and
// clears the posted flag. The original rows stay; corrections are always
// new entries.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeDocumentNotPosted,
			"document is not posted").
			WithDetail("document_id", doc.GetID().String())
	}
	if e.policy != nil {
		if err := e.policy.CanUnpost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}
	scope := doc.GetScope()
	if err := scope.Validate(); err != nil {
		return err
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return err
	}

	var reversed []*entity.StockLog
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		reversed, err = e.ledger.Reverse(ctx, scope, docRef(doc), doc.GetDate())
		if err != nil {
			return err
		}

		doc.MarkUnposted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		for _, c := range e.consumers {
			if err := c.ConsumeStockLogs(ctx, reversed); err != nil {
				return fmt.Errorf("stock log consumer: %w", err)
			}
		}

		return e.publishEvent(ctx, doc, "DocumentUnposted", len(reversed))
	})
	if err != nil {
		return err
	}

	e.recordAudit(ctx, doc, "unpost", len(reversed))
	logger.Info(ctx, "document unposted",
		"document_id", doc.GetID(),
		"document_type", doc.GetDocumentType(),
		"number", doc.GetNumber(),
		"reversal_logs", len(reversed),
	)
	return nil
}

func (e *Engine) recordAudit(ctx context.Context, doc Postable, action string, logCount int) {
	if e.audit == nil {
		return
	}
	err := e.audit(ctx, doc.GetDocumentType(), doc.GetID(), action, map[string]any{
		"number":         doc.GetNumber(),
		"posted_version": doc.GetPostedVersion(),
		"stock_logs":     logCount,
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "error", err, "document_id", doc.GetID())
	}
}
