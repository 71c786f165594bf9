package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"nectix/internal/domain"
)

// Policy ограниченная политика опроса: экспоненциальная пауза от начального
// интервала и жёсткий потолок попыток, чтобы неразрешившийся платёж не
// опрашивался вечно.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     int
}

// DefaultPolicy стартует с 5 секунд и ограничивает опрос ~10 минутами
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 5 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      1.5,
		MaxAttempts:     40,
	}
}

// State состояние поллера
type State int

const (
	StateIdle State = iota
	StatePolling
	StateApproved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateApproved:
		return "approved"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Update снимок одного цикла опроса для подписчика
type Update struct {
	Status domain.PaymentStatus
	Bundle *domain.DownloadBundle
	Err    error
}

// ErrPollExhausted попытки закончились, а терминальный статус не достигнут
var ErrPollExhausted = errors.New("payment polling exhausted")

// Poller опрашивает статус платежа до терминального состояния
type Poller struct {
	client Client
	policy Policy
	log    *zap.Logger
}

func NewPoller(client Client, policy Policy, log *zap.Logger) *Poller {
	return &Poller{client: client, policy: policy, log: log}
}

// Run блокирует до терминального статуса, исчерпания попыток или отмены
// контекста. onUpdate (может быть nil) вызывается после каждого цикла.
// Ошибка одного запроса статуса не останавливает цикл — следующий тик
// повторяет запрос сам. Ссылки на скачивание запрашиваются ровно один раз,
// только после approved; их неудача не отменяет approved.
func (p *Poller) Run(ctx context.Context, paymentID string, onUpdate func(Update)) (State, error) {
	interval := p.policy.InitialInterval

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		status, err := p.client.Status(ctx, paymentID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return StatePolling, ctx.Err()
			}
			p.log.Warn("payment status fetch failed",
				zap.String("payment_id", paymentID), zap.Int("attempt", attempt), zap.Error(err))
			notify(onUpdate, Update{Err: err})

		case status == domain.PaymentStatusApproved:
			bundle, derr := p.client.Downloads(ctx, paymentID)
			if derr != nil {
				// payment is approved regardless; surface the fetch error
				p.log.Error("download bundle fetch failed",
					zap.String("payment_id", paymentID), zap.Error(derr))
				notify(onUpdate, Update{Status: status, Err: derr})
				return StateApproved, nil
			}
			notify(onUpdate, Update{Status: status, Bundle: bundle})
			return StateApproved, nil

		case status.IsTerminal():
			notify(onUpdate, Update{Status: status})
			return StateFailed, nil

		default:
			notify(onUpdate, Update{Status: status})
		}

		select {
		case <-ctx.Done():
			return StatePolling, ctx.Err()
		case <-time.After(interval):
		}
		interval = p.nextInterval(interval)
	}

	return StateFailed, ErrPollExhausted
}

func (p *Poller) nextInterval(cur time.Duration) time.Duration {
	next := time.Duration(float64(cur) * p.policy.Multiplier)
	if p.policy.MaxInterval > 0 && next > p.policy.MaxInterval {
		return p.policy.MaxInterval
	}
	if next < cur {
		// non-growing multiplier keeps the fixed interval
		return cur
	}
	return next
}

func notify(fn func(Update), u Update) {
	if fn != nil {
		fn(u)
	}
}
