package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestPublishStatusKeysByHorse(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w, topic: "horse-status"}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := k.PublishStatus(context.Background(), StatusEvent{
		Operation: OpRadiate,
		HorseID:   "h-1",
		HorseNum:  4,
		IsRadie:   true,
		Motif:     "Vente",
		Reference: "R-9",
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "h-1", string(msg.Key))
	assert.Equal(t, ts, msg.Time)
	assert.Equal(t, "operation", msg.Headers[0].Key)
	assert.Equal(t, OpRadiate, string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "h-1", decoded["horse"])
	assert.Equal(t, true, decoded["isRadie"])
	assert.Equal(t, "Vente", decoded["motifderadiation"])
}

func TestPublishStatusWrapsWriterError(t *testing.T) {
	k := &Kafka{writer: &fakeWriter{err: errors.New("no leader")}, topic: "horse-status"}

	err := k.PublishStatus(context.Background(), StatusEvent{HorseID: "h-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horse-status")
	assert.Contains(t, err.Error(), "no leader")
}
