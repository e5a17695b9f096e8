package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 100
	sendTimeout      = 30 * time.Second
)

// Dispatcher отправляет письма в фоне через пул воркеров.
// Вызывающий код не ждет доставки: ошибки только логируются.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	queue   chan Message
	wg      sync.WaitGroup
	workers int
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewDispatcher создает диспетчер. Нулевые workers и queueSize заменяются значениями по умолчанию.
func NewDispatcher(sender Sender, logger *slog.Logger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		queue:   make(chan Message, queueSize),
		workers: workers,
	}
}

// Start запускает воркеры. Повторный вызов ничего не делает.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.started = true
	d.logger.Info("mail dispatcher started", slog.Int("workers", d.workers))
}

// Stop закрывает очередь и ждет отправки оставшихся писем
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("mail dispatcher stopped")
}

// Enqueue ставит письмо в очередь без блокировки.
// Возвращает false, если очередь заполнена или диспетчер остановлен.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		d.logger.Warn("mail dispatcher stopped, email dropped", slog.String("to", msg.To))
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("mail queue is full, email dropped", slog.String("to", msg.To))
		return false
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		d.deliver(msg)
	}

	d.logger.Debug("mail worker stopped", slog.Int("worker", id))
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("failed to send email",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
		return
	}

	d.logger.Debug("email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
}
