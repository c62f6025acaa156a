package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafka.Writerのうち使う部分だけ（テストで差し替える）
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// イベントをJSONでkafkaに流す。keyは注文IDなので同じ注文の順序は保たれる
type KafkaDispatcher struct {
	writer MessageWriter
}

// Async: WriteMessagesはバッファに積むだけで戻る。送信結果はCompletionでログに出す
func NewKafkaWriter(brokers []string, topic string, log *zap.Logger) *kafka.Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   completionLogger(log),
	}
}

func completionLogger(log *zap.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			log.Warn("kafka notification not delivered",
				zap.String("topic", m.Topic),
				zap.ByteString("key", m.Key),
				zap.Error(err),
			)
		}
	}
}

func NewKafkaDispatcher(writer MessageWriter) *KafkaDispatcher {
	return &KafkaDispatcher{writer: writer}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: data,
		Time:  ev.OccurredAt,
	})
}

// 非同期バッファに残っている分を送り切ってから閉じる
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
