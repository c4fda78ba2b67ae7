package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// fakeBus replays queued events to the subscribed handler synchronously.
type fakeBus struct {
	queued []Event
}

func (f *fakeBus) Publish(ctx context.Context, topic string, event Event) error {
	f.queued = append(f.queued, event)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	for _, evt := range f.queued {
		if err := handler(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	return nil
}

func (f *fakeBus) Close() {}

func TestNewJSONEventDefaults(t *testing.T) {
	evt, err := NewJSONEvent("", "unit.test", stubPayload{Name: "a", Count: 2}, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.ID, "empty id gets generated")
	assert.Equal(t, "unit.test", evt.Type)
	assert.Equal(t, 0, evt.Retry)
	assert.Equal(t, len(RetryDelays), evt.MaxRetry, "zero max retry falls back to the full schedule")

	decoded, err := DecodeJSON[stubPayload](evt)
	require.NoError(t, err)
	assert.Equal(t, stubPayload{Name: "a", Count: 2}, decoded)
}

func TestNewJSONEventKeepsExplicitValues(t *testing.T) {
	evt, err := NewJSONEvent("evt-1", "unit.test", stubPayload{}, 2)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", evt.ID)
	assert.Equal(t, 2, evt.MaxRetry)
}

func TestDecodeJSONRejectsBadPayload(t *testing.T) {
	_, err := DecodeJSON[stubPayload](Event{Payload: []byte("{not json")})
	assert.Error(t, err)
}

func TestSubscribeJSONDecodesPayloadAndMeta(t *testing.T) {
	bus := &fakeBus{}
	evt, err := NewJSONEvent("evt-7", "unit.test", stubPayload{Name: "b", Count: 9}, 0)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), TopicAnalysisEvents.Base(), evt))

	var gotPayload stubPayload
	var gotMeta Event
	err = SubscribeJSON(context.Background(), bus, "group", TopicAnalysisEvents,
		func(ctx context.Context, payload stubPayload, meta Event) error {
			gotPayload = payload
			gotMeta = meta
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, stubPayload{Name: "b", Count: 9}, gotPayload)
	assert.Equal(t, "evt-7", gotMeta.ID)
	assert.Equal(t, "unit.test", gotMeta.Type)
}

func TestSubscribeJSONPropagatesDecodeError(t *testing.T) {
	bus := &fakeBus{queued: []Event{{ID: "evt-bad", Payload: []byte("{not json")}}}

	err := SubscribeJSON(context.Background(), bus, "group", TopicAnalysisEvents,
		func(ctx context.Context, payload stubPayload, meta Event) error {
			t.Fatal("handler must not run for an undecodable payload")
			return nil
		})
	assert.Error(t, err)
}

func TestParseRetryDelayFromTopicName(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  time.Duration
		ok    bool
	}{
		{"ten seconds", "clauseguard.analysis.events.retry.10s", 10 * time.Second, true},
		{"one minute", "clauseguard.analysis.events.retry.1m0s", time.Minute, true},
		{"no retry segment", "clauseguard.analysis.events", 0, false},
		{"bad duration", "clauseguard.analysis.events.retry.later", 0, false},
		{"empty suffix", "clauseguard.analysis.events.retry.", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryDelayFromTopicName(tt.topic)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryTopicNamesRoundTrip(t *testing.T) {
	topic := NewTopic("unit.test.events")
	names := topic.GetRetryTopics()
	require.Len(t, names, len(RetryDelays))

	for i, name := range names {
		delay, ok := ParseRetryDelayFromTopicName(name)
		require.True(t, ok, "generated name %q must parse back", name)
		assert.Equal(t, RetryDelays[i], delay)
	}
}

func TestGetRetryTopicBounds(t *testing.T) {
	topic := NewTopic("unit.test.events")

	_, err := topic.GetRetryTopic(0)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)

	_, err = topic.GetRetryTopic(len(RetryDelays) + 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)

	name, err := topic.GetRetryTopic(1)
	require.NoError(t, err)
	assert.Equal(t, "unit.test.events.retry."+RetryDelays[0].String(), name)
}
