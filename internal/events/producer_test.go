package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscan/internal/model"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishPriceObserved(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "price-events"}

	quote := model.PriceRecord{Retailer: "coles", Price: model.ParsePrice("3.10"), Currency: "AUD", URL: "u"}
	require.NoError(t, p.PublishPriceObserved(context.Background(), "p-1", "milk", quote))
	require.NoError(t, p.PublishPriceObserved(context.Background(), "", "bread", quote))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "p-1", string(w.msgs[0].Key))
	assert.Equal(t, "bread", string(w.msgs[1].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "PRICE_OBSERVED", got["event_type"])
	assert.Equal(t, "milk", got["search_term"])
	assert.Equal(t, 3.1, got["quote"].(map[string]any)["price"])
}

func TestPublishFailure(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.PublishPriceObserved(context.Background(), "", "milk", model.PriceRecord{})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewWithoutBrokers(t *testing.T) {
	assert.IsType(t, Noop{}, New(nil, "price-events"))
	assert.IsType(t, &Producer{}, New([]string{"localhost:9092"}, "price-events"))
}
