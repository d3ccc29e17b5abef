package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/posledger/backend/internal/domain/shared"
)

type paymentRecorded struct {
	shared.BaseDomainEvent
	AmountCents int64 `json:"amount_cents"`
}

func recordedEvent(businessID uuid.UUID) *paymentRecorded {
	return &paymentRecorded{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			"CreditPaymentRecorded", "CreditSale", uuid.New(), businessID),
		AmountCents: 2500,
	}
}

// projection records every event it sees and can be told to fail or panic.
type projection struct {
	mockHandler
	err   error
	panic bool
}

func (p *projection) Handle(ctx context.Context, event shared.DomainEvent) error {
	if p.panic {
		panic("projection out of sync")
	}
	p.handled = append(p.handled, event)
	return p.err
}

func newBus() (*InMemoryEventBus, *projection) {
	bus := NewInMemoryEventBus(zap.NewNop())
	proj := &projection{mockHandler: *newMockHandler("CreditPaymentRecorded")}
	bus.Subscribe(proj, "CreditPaymentRecorded")
	return bus, proj
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus, proj := newBus()

	ev := recordedEvent(uuid.New())
	require.NoError(t, bus.Publish(context.Background(), ev))

	require.Len(t, proj.handled, 1)
	assert.Equal(t, ev, proj.handled[0])
}

func TestInMemoryEventBus_Publish_Batch(t *testing.T) {
	bus, proj := newBus()

	err := bus.Publish(context.Background(),
		recordedEvent(uuid.New()), recordedEvent(uuid.New()))

	require.NoError(t, err)
	assert.Len(t, proj.handled, 2)
}

func TestInMemoryEventBus_Publish_FanOut(t *testing.T) {
	bus, first := newBus()
	second := &projection{mockHandler: *newMockHandler("CreditPaymentRecorded")}
	bus.Subscribe(second, "CreditPaymentRecorded")

	require.NoError(t, bus.Publish(context.Background(), recordedEvent(uuid.New())))

	assert.Len(t, first.handled, 1)
	assert.Len(t, second.handled, 1)
}

func TestInMemoryEventBus_Publish_WildcardSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	audit := &projection{mockHandler: *newMockHandler()}
	bus.Subscribe(audit)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent(uuid.New())))

	assert.Len(t, audit.handled, 1)
}

func TestInMemoryEventBus_Publish_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus, broken := newBus()
	broken.err = assert.AnError
	healthy := &projection{mockHandler: *newMockHandler("CreditPaymentRecorded")}
	bus.Subscribe(healthy, "CreditPaymentRecorded")

	err := bus.Publish(context.Background(), recordedEvent(uuid.New()))

	require.NoError(t, err, "a failing projection must not fail the publish")
	assert.Len(t, healthy.handled, 1)
}

func TestInMemoryEventBus_Publish_PanickingHandlerIsContained(t *testing.T) {
	bus, crashed := newBus()
	crashed.panic = true
	healthy := &projection{mockHandler: *newMockHandler("CreditPaymentRecorded")}
	bus.Subscribe(healthy, "CreditPaymentRecorded")

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), recordedEvent(uuid.New()))
	})
	assert.Len(t, healthy.handled, 1)
}

func TestInMemoryEventBus_Publish_NoSubscriberForType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	proj := &projection{mockHandler: *newMockHandler("CreditSaleOpened")}
	bus.Subscribe(proj, "CreditSaleOpened")

	require.NoError(t, bus.Publish(context.Background(), recordedEvent(uuid.New())))

	assert.Empty(t, proj.handled)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus, proj := newBus()

	require.NoError(t, bus.Publish(context.Background(), recordedEvent(uuid.New())))
	require.Len(t, proj.handled, 1)

	bus.Unsubscribe(proj)

	require.NoError(t, bus.Publish(context.Background(), recordedEvent(uuid.New())))
	assert.Len(t, proj.handled, 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus, proj := newBus()
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, recordedEvent(uuid.New())))
	assert.Len(t, proj.handled, 1)

	require.NoError(t, bus.Stop(ctx))
}
