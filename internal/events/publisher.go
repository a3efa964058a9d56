package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/metrics"
)

// 事件主题
const (
	TopicMovieCreated         = "movie.created"
	TopicMovieUpdated         = "movie.updated"
	TopicMovieDeleted         = "movie.deleted"
	TopicMoviesImported       = "movies.imported"
	TopicFeedbackSaved        = "feedback.saved"
	TopicReportCreated        = "report.created"
	TopicRecommendationServed = "recommendation.served"
)

// Event 事件信封
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher 事件发布，失败只记录日志，不影响调用方
type Publisher interface {
	Publish(ctx context.Context, topic string, data interface{})
}

// Bus 基于 watermill 的事件总线
//
// 未配置 NATS 时使用进程内 gochannel。
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[any]
	log        *logger.Logger
	mu         sync.RWMutex
	closed     bool
}

// NewBus 创建事件总线
func NewBus(natsURL string, log *logger.Logger) (*Bus, error) {
	adapter := NewLoggerAdapter(log)
	b := &Bus{
		log: log,
		breaker: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "event-bus",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("事件总线熔断状态变化", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}

	if natsURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, adapter)
		b.publisher = ch
		b.subscriber = ch
		return b, nil
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL: natsURL,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(-1),
			natsgo.ReconnectWait(2 * time.Second),
			natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
				if err != nil {
					adapter.Error("NATS disconnected", err, nil)
				}
			}),
		},
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{Disabled: true},
	}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	b.publisher = pub
	return b, nil
}

// Publish 序列化并发布事件
func (b *Bus) Publish(ctx context.Context, topic string, data interface{}) {
	err := b.publish(ctx, topic, data)
	metrics.RecordEvent(topic, err)
	if err != nil {
		b.log.Warn("事件发布失败", "topic", topic, "error", err)
	}
}

func (b *Bus) publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.New("publisher is closed")
	}

	ev := Event{
		ID:         uuid.NewString(),
		Type:       topic,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(ev.ID, payload)
	msg.SetContext(ctx)
	_, err = b.breaker.Execute(func() (any, error) {
		return nil, b.publisher.Publish(topic, msg)
	})
	return err
}

// Subscribe 订阅主题，仅进程内总线支持
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if b.subscriber == nil {
		return nil, errors.New("subscribe is only supported by the in-process bus")
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close 关闭总线
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.publisher.Close()
}

// Decode 解析事件信封
func Decode(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(ctx context.Context, topic string, data interface{}) {}

var _ watermill.LoggerAdapter = (*zapAdapter)(nil)
