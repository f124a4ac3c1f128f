package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/apperror"
	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/core/types"
	"valora/internal/domain/ledger"
)

// The tests here exercise orchestration: validation order, policy checks,
// consumer and event fan-out, transaction boundaries. Ledger math is
// covered by the ledger package's own tests, so documents project empty
// movement batches and the ledger no-ops.

type fakeDoc struct {
	id         id.ID
	scope      tenant.Scope
	number     string
	date       time.Time
	posted     bool
	version    int
	canPostErr error
	movements  []entity.MovementRecord
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		id:     id.New(),
		scope:  tenant.NewScope(id.New(), id.New()),
		number: "GR-00042",
		date:   time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (d *fakeDoc) GetID() id.ID              { return d.id }
func (d *fakeDoc) GetDocumentType() string   { return "goods_receipt" }
func (d *fakeDoc) GetScope() tenant.Scope    { return d.scope }
func (d *fakeDoc) GetNumber() string         { return d.number }
func (d *fakeDoc) GetDate() time.Time        { return d.date }
func (d *fakeDoc) GetPostedVersion() int     { return d.version }
func (d *fakeDoc) IsPosted() bool            { return d.posted }
func (d *fakeDoc) CanPost(context.Context) error { return d.canPostErr }

func (d *fakeDoc) MarkPosted() {
	d.posted = true
	d.version++
}

func (d *fakeDoc) MarkUnposted() { d.posted = false }

func (d *fakeDoc) ProjectMovements(context.Context) ([]entity.MovementRecord, error) {
	return d.movements, nil
}

// stubStore satisfies ledger.Store with empty results. Reverse sees no
// prior logs and produces no reversals.
type stubStore struct{}

func (stubStore) GetEntry(context.Context, tenant.Scope, entity.LedgerKey, id.ID) (*entity.CostLedgerEntry, error) {
	return nil, nil
}
func (stubStore) GetEntryForUpdate(context.Context, tenant.Scope, entity.LedgerKey, id.ID) (*entity.CostLedgerEntry, error) {
	return nil, nil
}
func (stubStore) GetLatestEntry(context.Context, tenant.Scope, entity.LedgerKey) (*entity.CostLedgerEntry, error) {
	return nil, nil
}
func (stubStore) GetOpeningBalance(context.Context, tenant.Scope, entity.LedgerKey) (entity.Balance, error) {
	return entity.ZeroBalance(), nil
}
func (stubStore) CreateEntry(context.Context, *entity.CostLedgerEntry) error { return nil }
func (stubStore) UpdateEntry(context.Context, *entity.CostLedgerEntry) error { return nil }
func (stubStore) ListEntriesBySubPeriod(context.Context, tenant.Scope, id.ID, id.ID) ([]*entity.CostLedgerEntry, error) {
	return nil, nil
}
func (stubStore) RollForward(context.Context, tenant.Scope, *entity.SubPeriod, *entity.SubPeriod, entity.ValuationPolicy) error {
	return nil
}
func (stubStore) AccumulateWarehouseEntry(context.Context, id.ID, id.ID, types.Quantity, types.Money) error {
	return nil
}
func (stubStore) GetLatestLog(context.Context, tenant.Scope, entity.LedgerKey) (*entity.StockLog, error) {
	return nil, nil
}
func (stubStore) CreateLogs(context.Context, []*entity.StockLog) error { return nil }
func (stubStore) ListLogs(context.Context, tenant.Scope, ledger.LogFilter) ([]*entity.StockLog, error) {
	return nil, nil
}

type noopTx struct{}

func (noopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePolicy struct {
	postErr   error
	unpostErr error
}

func (p fakePolicy) CanPost(context.Context, time.Time) error   { return p.postErr }
func (p fakePolicy) CanModify(context.Context, time.Time) error { return nil }
func (p fakePolicy) CanUnpost(context.Context, time.Time) error { return p.unpostErr }
func (p fakePolicy) GetClosedPeriod(context.Context) time.Time  { return time.Time{} }

type capturePublisher struct {
	events []Event
	err    error
}

func (p *capturePublisher) PublishEvent(_ context.Context, e Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type captureConsumer struct {
	batches int
	err     error
}

func (c *captureConsumer) ConsumeStockLogs(context.Context, []*entity.StockLog) error {
	if c.err != nil {
		return c.err
	}
	c.batches++
	return nil
}

type auditCall struct {
	entityType string
	action     string
	changes    map[string]any
}

func newTestEngine() (*Engine, *capturePublisher, *[]auditCall) {
	var calls []auditCall
	audit := func(_ context.Context, entityType string, _ id.ID, action string, changes map[string]any) error {
		calls = append(calls, auditCall{entityType: entityType, action: action, changes: changes})
		return nil
	}
	pub := &capturePublisher{}
	le := ledger.NewEngine(stubStore{}, nil, nil, nil, noopTx{})
	e := NewEngine(le, noopTx{}, audit)
	e.SetEventPublisher(pub)
	return e, pub, &calls
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestPost_AlreadyPosted(t *testing.T) {
	e, pub, _ := newTestEngine()
	doc := newFakeDoc()
	doc.posted = true

	err := e.Post(context.Background(), doc, func(context.Context) error { return nil })

	assert.Equal(t, apperror.CodeDocumentPosted, appCode(t, err))
	assert.Empty(t, pub.events)
}

func TestPost_DocumentValidationStops(t *testing.T) {
	e, pub, audits := newTestEngine()
	doc := newFakeDoc()
	doc.canPostErr = errors.New("no lines")
	saved := false

	err := e.Post(context.Background(), doc, func(context.Context) error { saved = true; return nil })

	require.Error(t, err)
	assert.False(t, doc.posted)
	assert.False(t, saved)
	assert.Empty(t, pub.events)
	assert.Empty(t, *audits)
}

func TestPost_PolicyDenied(t *testing.T) {
	e, pub, _ := newTestEngine()
	e.SetPolicy(fakePolicy{postErr: apperror.NewPeriodClosed("2026-03")})
	doc := newFakeDoc()

	err := e.Post(context.Background(), doc, func(context.Context) error { return nil })

	assert.Equal(t, apperror.CodePeriodClosed, appCode(t, err))
	assert.False(t, doc.posted)
	assert.Empty(t, pub.events)
}

func TestPost_Success(t *testing.T) {
	e, pub, audits := newTestEngine()
	e.SetPolicy(fakePolicy{})
	consumer := &captureConsumer{}
	e.RegisterConsumer(consumer)
	doc := newFakeDoc()
	saved := false

	err := e.Post(context.Background(), doc, func(context.Context) error { saved = true; return nil })

	require.NoError(t, err)
	assert.True(t, doc.posted)
	assert.Equal(t, 1, doc.version)
	assert.True(t, saved)
	assert.Equal(t, 1, consumer.batches)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "DocumentPosted", ev.EventType)
	assert.Equal(t, "goods_receipt", ev.AggregateType)
	assert.Equal(t, doc.id, ev.AggregateID)

	require.Len(t, *audits, 1)
	call := (*audits)[0]
	assert.Equal(t, "post", call.action)
	assert.Equal(t, "GR-00042", call.changes["number"])
}

func TestPost_SaveFailurePropagates(t *testing.T) {
	e, pub, audits := newTestEngine()
	doc := newFakeDoc()

	err := e.Post(context.Background(), doc, func(context.Context) error {
		return errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save document")
	assert.Empty(t, pub.events)
	assert.Empty(t, *audits)
}

func TestPost_ConsumerFailureAborts(t *testing.T) {
	e, pub, audits := newTestEngine()
	e.RegisterConsumer(&captureConsumer{err: errors.New("fulfillment unavailable")})
	doc := newFakeDoc()

	err := e.Post(context.Background(), doc, func(context.Context) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock log consumer")
	assert.Empty(t, pub.events)
	assert.Empty(t, *audits)
}

func TestPost_TxManagerFromContext(t *testing.T) {
	le := ledger.NewEngine(stubStore{}, nil, nil, nil, noopTx{})
	e := NewEngine(le, nil, nil)
	doc := newFakeDoc()

	err := e.Post(context.Background(), doc, func(context.Context) error { return nil })
	require.Error(t, err, "no transaction manager in context")
	assert.False(t, doc.posted)

	ctx := tenant.WithTxManager(context.Background(), noopTx{})
	require.NoError(t, e.Post(ctx, doc, func(context.Context) error { return nil }))
	assert.True(t, doc.posted)
}

func TestUnpost_NotPosted(t *testing.T) {
	e, _, _ := newTestEngine()
	doc := newFakeDoc()

	err := e.Unpost(context.Background(), doc, func(context.Context) error { return nil })

	assert.Equal(t, apperror.CodeDocumentNotPosted, appCode(t, err))
}

func TestUnpost_PolicyDenied(t *testing.T) {
	e, _, _ := newTestEngine()
	e.SetPolicy(fakePolicy{unpostErr: apperror.NewPeriodClosed("2026-03")})
	doc := newFakeDoc()
	doc.posted = true

	err := e.Unpost(context.Background(), doc, func(context.Context) error { return nil })

	assert.Equal(t, apperror.CodePeriodClosed, appCode(t, err))
	assert.True(t, doc.posted)
}

func TestUnpost_Success(t *testing.T) {
	e, pub, audits := newTestEngine()
	doc := newFakeDoc()
	doc.posted = true
	saved := false

	err := e.Unpost(context.Background(), doc, func(context.Context) error { saved = true; return nil })

	require.NoError(t, err)
	assert.False(t, doc.posted)
	assert.True(t, saved)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "DocumentUnposted", pub.events[0].EventType)

	require.Len(t, *audits, 1)
	assert.Equal(t, "unpost", (*audits)[0].action)
}
