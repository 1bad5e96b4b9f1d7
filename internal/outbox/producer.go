package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

// topicProfile tunes the writer of one gym topic. Check-ins are flushed quickly;
// membership changes wait for every replica.
type topicProfile struct {
	acks         kafka.RequiredAcks
	compression  kafka.Compression
	batchTimeout time.Duration
}

var topicProfiles = map[string]topicProfile{
	service.TopicCheckIns: {
		acks:         kafka.RequireOne,
		compression:  kafka.Lz4,
		batchTimeout: 10 * time.Millisecond,
	},
	service.TopicMemberships: {
		acks:         kafka.RequireAll,
		compression:  kafka.Snappy,
		batchTimeout: 50 * time.Millisecond,
	},
}

// KafkaProducer keeps one writer per gym topic. Messages are partitioned by key, which the
// recorder sets to the member id so a member's events stay ordered.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	w, err := p.writerFor(topic)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerFor(topic string) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w, nil
	}
	w, err := newTopicWriter(p.brokers, topic)
	if err != nil {
		return nil, err
	}
	p.writers[topic] = w
	return w, nil
}

// newTopicWriter refuses topics outside the gym event catalogue; they stay in the outbox
// and are retried until they exhaust their attempts.
func newTopicWriter(brokers []string, topic string) (*kafka.Writer, error) {
	profile, ok := topicProfiles[topic]
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: profile.acks,
		Compression:  profile.compression,
		BatchTimeout: profile.batchTimeout,
	}, nil
}

func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
