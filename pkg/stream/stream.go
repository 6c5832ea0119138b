// Package stream publishes executed trades to Kafka and runs consumer
// groups over the trade topic in batch mode.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}

	wr := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &Producer{w: wr}
}

func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	GroupID      string        `yaml:"group_id"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

type ConsumerGroup struct {
	r   *kafka.Reader
	cfg ConsumerConfig
}

func NewConsumerGroup(cfg ConsumerConfig) *ConsumerGroup {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}

	rd := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})

	return &ConsumerGroup{r: rd, cfg: cfg}
}

func (cg *ConsumerGroup) Close() error {
	if cg == nil || cg.r == nil {
		return nil
	}
	return cg.r.Close()
}

// Run fetches messages, gathers them into batches bounded by BatchSize and
// BatchTimeout, and hands each batch to the handler. Offsets commit only
// after the handler returns nil, so a crashed worker replays its batch.
func (cg *ConsumerGroup) Run(ctx context.Context, handler func(context.Context, []kafka.Message) error) error {
	if cg == nil || cg.r == nil {
		return errors.New("consumer not initialized")
	}

	var buf []kafka.Message
	deadline := time.Now().Add(cg.cfg.BatchTimeout)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := handler(ctx, buf); err != nil {
			return err
		}
		if err := cg.r.CommitMessages(ctx, buf...); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	for {
		fetchCtx, cancel := context.WithDeadline(ctx, deadline)
		m, err := cg.r.FetchMessage(fetchCtx)
		cancel()

		switch {
		case err == nil:
			buf = append(buf, m)
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// batch window elapsed, fall through to flush
		case errors.Is(err, context.Canceled):
			return flush()
		default:
			return err
		}

		if len(buf) >= cg.cfg.BatchSize || time.Now().After(deadline) {
			if err := flush(); err != nil {
				return err
			}
			deadline = time.Now().Add(cg.cfg.BatchTimeout)
		}
	}
}
