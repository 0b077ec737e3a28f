package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hookline/hookline/config"
	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// inactiveSubscriptionMessage is recorded on the terminal attempt written
// when a task resolves to a missing or deactivated subscription.
const inactiveSubscriptionMessage = "subscription inactive or missing"

// consumeRetryDelay is how long a consumer waits after a failed Consume call,
// so a queue outage does not spin the loop hot.
const consumeRetryDelay = time.Second

// DeliveryWorker consumes delivery tasks and performs the signed outbound
// POSTs. Every finished attempt is recorded; retryable failures are
// re-enqueued with the configured backoff until the attempt budget runs out.
type DeliveryWorker struct {
	webhookRepo domain.WebhookRepository
	subCache    domain.SubscriptionCache
	attemptRepo domain.DeliveryAttemptRepository
	queue       domain.Queue
	cfg         config.DeliveryConfig
	httpClient  *http.Client
	outbound    *semaphore.Weighted
	logger      logger.Logger
	wg          sync.WaitGroup
}

// NewDeliveryWorker creates a new delivery worker. Pass a nil httpClient to
// get the default client: request timeout from the config, redirects not
// followed.
func NewDeliveryWorker(
	webhookRepo domain.WebhookRepository,
	subCache domain.SubscriptionCache,
	attemptRepo domain.DeliveryAttemptRepository,
	queue domain.Queue,
	cfg config.DeliveryConfig,
	httpClient *http.Client,
	logger logger.Logger,
) *DeliveryWorker {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.RequestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return &DeliveryWorker{
		webhookRepo: webhookRepo,
		subCache:    subCache,
		attemptRepo: attemptRepo,
		queue:       queue,
		cfg:         cfg,
		httpClient:  httpClient,
		outbound:    semaphore.NewWeighted(cfg.OutboundConcurrency),
		logger:      logger,
	}
}

// Start launches the consumer goroutines. They stop when the context is
// cancelled; Wait blocks until they have drained.
func (w *DeliveryWorker) Start(ctx context.Context) {
	w.logger.WithField("concurrency", w.cfg.WorkerConcurrency).Info("Starting delivery worker")

	for i := 0; i < w.cfg.WorkerConcurrency; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.consumeLoop(ctx)
		}()
	}
}

// Wait blocks until all consumer goroutines have stopped
func (w *DeliveryWorker) Wait() {
	w.wg.Wait()
}

func (w *DeliveryWorker) consumeLoop(ctx context.Context) {
	for {
		msg, err := w.queue.Consume(ctx, domain.LaneDeliver)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error(fmt.Sprintf("Failed to consume delivery task: %v", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(consumeRetryDelay):
			}
			continue
		}

		w.processTask(ctx, msg)
	}
}

// processTask runs one delivery task to completion. The message is acked
// once its attempt row (and any follow-up task) is durable, and nacked on
// infrastructure failure so the queue redelivers it.
func (w *DeliveryWorker) processTask(ctx context.Context, msg *domain.TaskMessage) {
	var task domain.DeliveryTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		w.logger.WithField("message_id", msg.ID).Error(fmt.Sprintf("Dropping undecodable delivery task: %v", err))
		w.ack(ctx, msg)
		return
	}

	log := w.logger.WithFields(map[string]interface{}{
		"webhook_id":     task.WebhookID,
		"attempt_number": task.AttemptNumber,
	})

	webhook, err := w.webhookRepo.GetByID(ctx, task.WebhookID)
	if err != nil {
		if domain.IsNotFound(err) {
			// The subscription (and its webhooks) were deleted while the task
			// was queued.
			log.Debug("Webhook no longer exists, dropping task")
			w.ack(ctx, msg)
			return
		}
		log.Error(fmt.Sprintf("Failed to load webhook: %v", err))
		w.nack(ctx, msg)
		return
	}

	sub, err := w.subCache.Get(ctx, webhook.SubscriptionID)
	if err != nil && !domain.IsNotFound(err) {
		log.Error(fmt.Sprintf("Failed to resolve subscription: %v", err))
		w.nack(ctx, msg)
		return
	}

	if sub == nil || !sub.IsActive {
		w.terminateInactive(ctx, msg, webhook, task, log)
		return
	}

	attempt, outcome := w.deliver(ctx, webhook, sub, task.AttemptNumber)

	if err := w.attemptRepo.Create(ctx, attempt); err != nil {
		if err == domain.ErrDuplicateAttempt {
			// The queue redelivered a task whose attempt already landed.
			log.Debug("Attempt already recorded, dropping duplicate task")
			w.ack(ctx, msg)
			return
		}
		log.Error(fmt.Sprintf("Failed to record delivery attempt: %v", err))
		w.nack(ctx, msg)
		return
	}

	switch outcome {
	case domain.OutcomeSuccess:
		log.Info("Webhook delivered")
	case domain.OutcomePermanent:
		log.WithField("status_code", attempt.StatusCode).Warn("Webhook rejected by target, not retrying")
	case domain.OutcomeRetryable:
		if task.AttemptNumber >= w.cfg.MaxAttempts {
			log.Warn("Webhook delivery failed after final attempt")
			break
		}
		delay := w.cfg.Backoff(task.AttemptNumber)
		next := domain.DeliveryTask{WebhookID: task.WebhookID, AttemptNumber: task.AttemptNumber + 1}
		if err := w.queue.Enqueue(ctx, domain.LaneDeliver, next, delay); err != nil {
			log.Error(fmt.Sprintf("Failed to schedule retry: %v", err))
			w.nack(ctx, msg)
			return
		}
		log.WithField("delay", delay.String()).Debug("Webhook delivery failed, retry scheduled")
	}

	w.ack(ctx, msg)
}

// terminateInactive records the terminal attempt for a missing or
// deactivated subscription and drops the task.
func (w *DeliveryWorker) terminateInactive(ctx context.Context, msg *domain.TaskMessage, webhook *domain.Webhook, task domain.DeliveryTask, log logger.Logger) {
	errMsg := inactiveSubscriptionMessage
	attempt := &domain.DeliveryAttempt{
		SubscriptionID: webhook.SubscriptionID,
		WebhookID:      webhook.ID,
		AttemptNumber:  task.AttemptNumber,
		ErrorMessage:   &errMsg,
		IsSuccess:      false,
	}

	if err := w.attemptRepo.Create(ctx, attempt); err != nil && err != domain.ErrDuplicateAttempt {
		log.Error(fmt.Sprintf("Failed to record terminal attempt: %v", err))
		w.nack(ctx, msg)
		return
	}

	log.Info("Subscription inactive or missing, delivery terminated")
	w.ack(ctx, msg)
}

// deliver performs the outbound POST and returns the attempt row to record
// together with its outcome. The body sent over the wire is exactly the
// payload stored at ingest, and exactly those bytes are signed.
func (w *DeliveryWorker) deliver(ctx context.Context, webhook *domain.Webhook, sub *domain.Subscription, attemptNumber int) (*domain.DeliveryAttempt, domain.Outcome) {
	attempt := &domain.DeliveryAttempt{
		SubscriptionID: webhook.SubscriptionID,
		WebhookID:      webhook.ID,
		AttemptNumber:  attemptNumber,
	}

	body := []byte(webhook.Payload)
	signature := signPayload(body, sub.Secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.TargetURL, bytes.NewReader(body))
	if err != nil {
		errMsg := fmt.Sprintf("failed to build request: %v", err)
		attempt.ErrorMessage = &errMsg
		return attempt, domain.OutcomeRetryable
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event", webhook.EventType)
	req.Header.Set("X-Webhook-Id", strconv.FormatInt(webhook.ID, 10))
	req.Header.Set("X-Webhook-Attempt", strconv.Itoa(attemptNumber))

	if err := w.outbound.Acquire(ctx, 1); err != nil {
		errMsg := fmt.Sprintf("failed to acquire outbound slot: %v", err)
		attempt.ErrorMessage = &errMsg
		return attempt, domain.OutcomeRetryable
	}
	resp, err := w.httpClient.Do(req)
	w.outbound.Release(1)

	if err != nil {
		errMsg := err.Error()
		attempt.ErrorMessage = &errMsg
		return attempt, domain.OutcomeRetryable
	}
	defer resp.Body.Close()

	captured, _ := io.ReadAll(io.LimitReader(resp.Body, int64(w.cfg.ResponseBodyCapture)))
	responseBody := string(captured)

	statusCode := resp.StatusCode
	attempt.StatusCode = &statusCode
	attempt.ResponseBody = &responseBody

	outcome := domain.ClassifyStatus(statusCode)
	if outcome == domain.OutcomeSuccess {
		attempt.IsSuccess = true
	} else {
		errMsg := fmt.Sprintf("HTTP %d", statusCode)
		attempt.ErrorMessage = &errMsg
	}

	return attempt, outcome
}

func (w *DeliveryWorker) ack(ctx context.Context, msg *domain.TaskMessage) {
	if err := w.queue.Ack(ctx, msg); err != nil {
		w.logger.WithField("message_id", msg.ID).Error(fmt.Sprintf("Failed to ack task: %v", err))
	}
}

func (w *DeliveryWorker) nack(ctx context.Context, msg *domain.TaskMessage) {
	if err := w.queue.Nack(ctx, msg); err != nil {
		w.logger.WithField("message_id", msg.ID).Error(fmt.Sprintf("Failed to nack task: %v", err))
	}
}

// signPayload computes the lowercase hex HMAC-SHA256 of the body under the
// subscription secret.
func signPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
