package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"kudos/models"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBusFlushDelivers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			received <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      500,
		NewBalance:      498,
		TransactionType: models.TransactionTypeLikeDebit,
		ChangeAmount:    -2,
	}

	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	wg.Wait()

	select {
	case got := <-received:
		assert.Equal(t, testEvent.UserID, got.UserID)
		assert.Equal(t, testEvent.OldBalance, got.OldBalance)
		assert.Equal(t, testEvent.NewBalance, got.NewBalance)
		assert.Equal(t, testEvent.TransactionType, got.TransactionType)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBusDiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan Event, 1)
	mainBus.Subscribe(EventTypeLikeCreated, func(ctx context.Context, event Event) {
		received <- event
	})

	transactionalBus.Publish(LikeCreatedEvent{LikeID: 1, CardID: 10})
	transactionalBus.Discard()

	// A later flush must not resurrect discarded events
	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case ev := <-received:
		t.Fatalf("Discarded event was delivered: %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusDeliversOnlyToMatchingType(t *testing.T) {
	bus := NewBus()

	likeEvents := make(chan Event, 2)
	bus.Subscribe(EventTypeLikeCreated, func(ctx context.Context, event Event) {
		likeEvents <- event
	})

	bus.Emit(context.Background(), WeeklyResetEvent{WeekStart: "2024-01-15", UsersReset: 3})
	bus.Emit(context.Background(), LikeCreatedEvent{LikeID: 1, CardID: 10, ActorID: 3})

	select {
	case ev := <-likeEvents:
		likeEvent, ok := ev.(LikeCreatedEvent)
		assert.True(t, ok)
		assert.Equal(t, int64(1), likeEvent.LikeID)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}

	select {
	case ev := <-likeEvents:
		t.Fatalf("Unexpected event delivered: %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	received := make(chan Event, 1)
	bus.Subscribe(EventTypeCardCreated, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeCardCreated, func(ctx context.Context, event Event) {
		received <- event
	})

	bus.Emit(context.Background(), CardCreatedEvent{CardID: 55, SenderID: 1})

	select {
	case ev := <-received:
		cardEvent, ok := ev.(CardCreatedEvent)
		assert.True(t, ok)
		assert.Equal(t, int64(55), cardEvent.CardID)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}
