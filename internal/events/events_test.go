package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_RunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventSchoolCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventSchoolCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventSchoolDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventSchoolCreated, "s1", "s1", Actor{}, nil))
	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]bool{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type] = true
		return nil
	})
	for _, typ := range AllTypes() {
		require.NoError(t, d.Publish(context.Background(), New(typ, "", "r", Actor{}, nil)))
	}
	assert.Len(t, seen, len(AllTypes()))
}

type fakeChannel struct {
	mu        sync.Mutex
	declared  []string
	published []amqp.Publishing
	failNext  bool
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("channel closed")
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(t *testing.T, channels ...*fakeChannel) (*AMQPPublisher, *int) {
	t.Helper()
	p, err := NewAMQPPublisher("amqp://test", "school.events", zap.NewNop())
	require.NoError(t, err)
	dials := 0
	p.dial = func(string) (amqpChannel, func() error, error) {
		if dials >= len(channels) {
			return nil, nil, errors.New("broker down")
		}
		ch := channels[dials]
		dials++
		return ch, nil, nil
	}
	return p, &dials
}

func TestAMQPPublisher_PublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, dials := newTestPublisher(t, ch)

	event := New(EventStudentEnrolled, "school-1", "student-1", Actor{UserID: "u1"}, StudentPayload{Name: "Ada"})
	require.NoError(t, p.Handle(context.Background(), event))
	require.NoError(t, p.Handle(context.Background(), event))

	assert.Equal(t, 1, *dials, "connection reused")
	assert.Equal(t, []string{"school.events"}, ch.declared)
	require.Len(t, ch.published, 2)

	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "student.enrolled", msg.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "student-1", decoded["resource_id"])
}

func TestAMQPPublisher_ReconnectsAfterFailure(t *testing.T) {
	first := &fakeChannel{failNext: true}
	second := &fakeChannel{}
	p, dials := newTestPublisher(t, first, second)

	event := New(EventSchoolCreated, "s", "s", Actor{}, nil)
	assert.Error(t, p.Handle(context.Background(), event))
	assert.True(t, first.closed)

	require.NoError(t, p.Handle(context.Background(), event))
	assert.Equal(t, 2, *dials)
	assert.Len(t, second.published, 1)
}

func TestAMQPPublisher_BrokerDown(t *testing.T) {
	p, _ := newTestPublisher(t)
	assert.Error(t, p.Handle(context.Background(), New(EventSchoolCreated, "", "s", Actor{}, nil)))
}

func TestAMQPPublisher_BacksOffWhileBrokerIsDown(t *testing.T) {
	p, err := NewAMQPPublisher("amqp://test", "school.events", zap.NewNop())
	require.NoError(t, err)
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	up := false
	attempts := 0
	ch := &fakeChannel{}
	p.dial = func(string) (amqpChannel, func() error, error) {
		attempts++
		if !up {
			return nil, nil, errors.New("broker down")
		}
		return ch, nil, nil
	}
	event := New(EventSchoolCreated, "s", "s", Actor{}, nil)

	assert.Error(t, p.Handle(context.Background(), event))
	assert.Equal(t, 1, attempts)

	// Within the first interval nothing is dialed.
	assert.ErrorIs(t, p.Handle(context.Background(), event), ErrBrokerBackoff)
	assert.Equal(t, 1, attempts)

	now = now.Add(time.Second)
	assert.Error(t, p.Handle(context.Background(), event))
	assert.Equal(t, 2, attempts)

	// The interval doubled.
	now = now.Add(time.Second)
	assert.ErrorIs(t, p.Handle(context.Background(), event), ErrBrokerBackoff)
	assert.Equal(t, 2, attempts)

	up = true
	now = now.Add(time.Second)
	require.NoError(t, p.Handle(context.Background(), event))
	assert.Equal(t, 3, attempts)
	assert.Len(t, ch.published, 1)
	assert.Zero(t, p.backoff)
}

func TestNewAMQPPublisher_RequiresURLAndQueue(t *testing.T) {
	_, err := NewAMQPPublisher("", "q", nil)
	assert.Error(t, err)
	_, err = NewAMQPPublisher("amqp://x", "", nil)
	assert.Error(t, err)
}
