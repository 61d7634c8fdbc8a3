package symbol

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// JetstreamNotifier publishes merged symbol sets on the symbols stream.
type JetstreamNotifier struct {
	js     nats.JetStreamContext
	logger *logrus.Logger
	now    func() time.Time
}

func NewJetstreamNotifier(js nats.JetStreamContext, logger *logrus.Logger) *JetstreamNotifier {
	return &JetstreamNotifier{js: js, logger: logger, now: time.Now}
}

func (n *JetstreamNotifier) JetstreamEventInit(ctx context.Context) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.SymbolsStreamName,
		Subjects:  []string{constant.SymbolsSubjectAll},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Replicas:  1,
	}

	stream, err := n.js.StreamInfo(constant.SymbolsStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}

	if stream == nil {
		n.logger.Infof("creating stream: %s", constant.SymbolsStreamName)
		_, err = n.js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	_, err = n.js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		return err
	}

	n.logger.Infof("stream %s is ready", constant.SymbolsStreamName)

	return nil
}

func (n *JetstreamNotifier) NotifyMerged(ctx context.Context, result entity.MergeResult, symbols []string) error {
	return util.PublishEvent(n.js, constant.SymbolsMergedEvent, NewMergedEvent(result, symbols, n.now()))
}

func NewMergedEvent(result entity.MergeResult, symbols []string, now time.Time) entity.SymbolEvent {
	return entity.SymbolEvent{
		ID:         uuid.NewString(),
		Type:       constant.SymbolsMergedEvent,
		Exchanges:  result.Merged,
		Output:     result.Output,
		Symbols:    symbols,
		Skipped:    result.Skipped,
		OccurredAt: now.UTC(),
	}
}
