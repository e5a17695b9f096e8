// Package ratelimit считает запросы в фиксированных временных окнах.
package ratelimit

import (
	"context"
	"time"
)

// Counter увеличивает счетчик ключа в текущем окне и возвращает
// количество запросов в окне с учетом текущего.
// Окно начинается с первого запроса и длится window.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
}

// window состояние счетчика одного ключа
type window struct {
	start time.Time
	count int
}

// hit учитывает запрос в момент now
func (w *window) hit(now time.Time, length time.Duration) int {
	if w.start.IsZero() || now.Sub(w.start) >= length {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

func (w *window) expired(now time.Time, length time.Duration) bool {
	return now.Sub(w.start) >= length
}
