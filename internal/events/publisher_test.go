package events_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edluar/pipeline/internal/events"
)

func TestStageChangedPayload(t *testing.T) {
	body, err := json.Marshal(events.StageChanged{
		Type:          events.ChannelStageChanged,
		ApplicationID: "app-1",
		JobID:         "job-1",
		From:          "applied",
		To:            "interview",
		SuggestAction: "OPEN_SCHEDULER_MODAL",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "EVENT_STAGE_CHANGED",
		"applicationId": "app-1",
		"jobId": "job-1",
		"from": "applied",
		"to": "interview",
		"suggestAction": "OPEN_SCHEDULER_MODAL"
	}`, string(body))
}

func TestRedisPublisher_UnreachableServer(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	lis.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	err = events.NewRedisPublisher(rdb).Publish(context.Background(), events.ChannelJobClosed, events.JobClosed{JobID: "j"})
	assert.Error(t, err)
}

func TestRedisPublisher_UnmarshalablePayload(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	err := events.NewRedisPublisher(rdb).Publish(context.Background(), "x", make(chan int))
	assert.ErrorContains(t, err, "marshal x")
}

func TestNop(t *testing.T) {
	var p events.Publisher = events.Nop{}
	assert.NoError(t, p.Publish(context.Background(), events.ChannelStageChanged, nil))
}
