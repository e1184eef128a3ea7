package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	messages []kafka.Message
	closed   bool
}

var errDrained = errors.New("drained")

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.messages) == 0 {
		return kafka.Message{}, errDrained
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestApplyGroupsBatch(t *testing.T) {
	t.Parallel()

	// Nil Redis: grouping still runs, nothing gets cached, no error.
	c := NewConsumerWith(&fakeReader{}, nil, nil)

	payload := []byte(`[
		{"productsId": "p-1", "variants": [{"id": "v1", "stock": 2, "price": 100}]},
		{"productName": "orphan"}
	]`)
	cached, skipped, err := c.Apply(payload)
	require.NoError(t, err)
	require.Zero(t, cached)
	require.Equal(t, 1, skipped)
}

func TestApplyRejectsGarbage(t *testing.T) {
	t.Parallel()

	c := NewConsumerWith(&fakeReader{}, nil, nil)

	_, _, err := c.Apply([]byte(`{broken`))
	require.Error(t, err)

	_, _, err = c.Apply([]byte(`"just a string"`))
	require.Error(t, err)

	_, _, err = c.Apply([]byte(`[]`))
	require.Error(t, err)
}

func TestRunDrainsAndSurfacesReaderFailure(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 1, Value: []byte(`[{"productsId": "p-1"}]`)},
		{Offset: 2, Value: []byte(`{broken`)}, // counted, not fatal
		{Offset: 3, Value: []byte(`[{"productsId": "p-2"}]`)},
	}}
	c := NewConsumerWith(reader, nil, nil)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, errDrained)
	require.Empty(t, reader.messages)
	require.True(t, reader.closed)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &fakeReader{}
	c := NewConsumerWith(reader, nil, nil)
	require.NoError(t, c.Run(ctx))
}
