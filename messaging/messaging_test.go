package messaging

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutURLIsNop(t *testing.T) {
	pub, closeFn, err := New("")
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, Nop{}, pub)
	assert.NoError(t, pub.PublishSubmissionCreated(context.Background(), SubmissionCreatedMessage{SubmissionID: "x"}))
	assert.NoError(t, pub.PublishStatusUpdated(context.Background(), StatusUpdatedMessage{SubmissionID: "x"}))
}

func TestNewBadURL(t *testing.T) {
	_, _, err := New("amqp://127.0.0.1:1/")
	assert.Error(t, err)
}

func TestRabbitMQPublish(t *testing.T) {
	url := os.Getenv("OTBOT_TEST_AMQP_URL")
	if url == "" {
		t.Skip("OTBOT_TEST_AMQP_URL not set")
	}
	rmq, err := NewRabbitMQ(url)
	require.NoError(t, err)
	defer rmq.Close()

	err = rmq.PublishStatusUpdated(context.Background(), StatusUpdatedMessage{
		SubmissionID: "s1",
		OldStatus:    "pending_review",
		NewStatus:    "active",
		Timestamp:    time.Now().Unix(),
	})
	assert.NoError(t, err)
}
