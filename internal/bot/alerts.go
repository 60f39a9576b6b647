package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/metrics"
)

const alertQueueSize = 64

// alertWorker posts admin alerts to the log channel off the handler path.
type alertWorker struct {
	session   alertSession
	channelID string
	logger    *slog.Logger
	metrics   *metrics.EconomyMetrics

	queue    chan string
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	backoff  func() time.Duration
}

// Minimal session interface for sending channel messages.
type alertSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func newAlertWorker(session alertSession, channelID string, logger *slog.Logger, m *metrics.EconomyMetrics) *alertWorker {
	return &alertWorker{
		session:   session,
		channelID: channelID,
		logger:    logger,
		metrics:   m,
		queue:     make(chan string, alertQueueSize),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		backoff: func() time.Duration {
			return time.Duration(300+rand.Intn(500)) * time.Millisecond
		},
	}
}

// Notify queues an alert. It never blocks; when the queue is full the alert is only logged.
func (w *alertWorker) Notify(content string) {
	w.logger.Info("admin alert", "content", content)
	if w.channelID == "" {
		return
	}
	select {
	case w.queue <- content:
	default:
		w.metrics.ObserveAlertFailure()
		w.logger.Warn("alert queue full, dropping alert")
	}
}

func (w *alertWorker) start() {
	if w == nil {
		return
	}
	go w.loop()
}

// stop delivers what is already queued and waits for the worker to exit.
func (w *alertWorker) stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopChan)
		<-w.done
	})
}

func (w *alertWorker) loop() {
	defer close(w.done)
	ctx := context.Background()
	for {
		select {
		case content := <-w.queue:
			w.deliver(ctx, content)
		case <-w.stopChan:
			for {
				select {
				case content := <-w.queue:
					w.deliver(ctx, content)
				default:
					return
				}
			}
		}
	}
}

func (w *alertWorker) deliver(ctx context.Context, content string) {
	if err := w.sendWithRetry(ctx, w.channelID, content); err != nil {
		w.metrics.ObserveAlertFailure()
		w.logger.Error("failed to post alert", "channel_id", w.channelID, "error", err)
	}
}

func (w *alertWorker) sendWithRetry(ctx context.Context, channelID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := w.session.ChannelMessageSend(channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) {
			return err
		}
		time.Sleep(w.backoff())
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
