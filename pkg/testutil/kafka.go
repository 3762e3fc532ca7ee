package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/bibbank/loan-lifecycle/pkg/kafka"
)

// Broker is a single-node KRaft Kafka owned by a single test.
type Broker struct {
	Addrs []string
}

// StartKafka runs a Kafka container that is terminated when t ends.
func StartKafka(t *testing.T) *Broker {
	t.Helper()
	ctx := context.Background()

	container, err := kafka.Run(ctx, "confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("loan-lifecycle-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	addrs, err := container.Brokers(ctx)
	require.NoError(t, err)
	return &Broker{Addrs: addrs}
}

// Config returns a plaintext client config joining consumer group.
func (b *Broker) Config(group string) pkgkafka.Config {
	return pkgkafka.Config{Brokers: b.Addrs, ConsumerGroup: group}
}

// CreateTopic creates topic with the given partition count through the
// cluster controller, so consumers never race auto-creation.
func (b *Broker) CreateTopic(t *testing.T, topic string, partitions int) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", b.Addrs[0])
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}))
}
