package ratelimit

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketRateLimit = []byte("ratelimit")

// Bolt хранит счетчики в файле BoltDB, поэтому окна переживают рестарт сервера
type Bolt struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBolt открывает (или создает) файл счетчиков
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRateLimit)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ratelimit bucket: %w", err)
	}

	return &Bolt{db: db, now: time.Now}, nil
}

// Close closes the database
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Increment implements Counter
func (b *Bolt) Increment(_ context.Context, key string, length time.Duration) (int, error) {
	var count int

	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRateLimit)

		w := decodeWindow(bucket.Get([]byte(key)))
		count = w.hit(b.now(), length)

		return bucket.Put([]byte(key), encodeWindow(w, length))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return count, nil
}

// Prune удаляет истекшие окна и возвращает их количество
func (b *Bolt) Prune(_ context.Context) (int, error) {
	var removed int
	now := b.now()

	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRateLimit)

		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			w := decodeWindow(v)
			if w.expired(now, decodeLength(v)) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune ratelimit windows: %w", err)
	}

	return removed, nil
}

// Формат значения: start (unix nano) | count | length (nano), по 8 байт big endian
func encodeWindow(w window, length time.Duration) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], uint64(w.start.UnixNano()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(w.count))
	binary.BigEndian.PutUint64(buf[16:24], uint64(length))
	return buf
}

func decodeWindow(v []byte) window {
	if len(v) != 24 {
		return window{}
	}
	return window{
		start: time.Unix(0, int64(binary.BigEndian.Uint64(v[0:8]))),
		count: int(binary.BigEndian.Uint64(v[8:16])),
	}
}

func decodeLength(v []byte) time.Duration {
	if len(v) != 24 {
		return 0
	}
	return time.Duration(binary.BigEndian.Uint64(v[16:24]))
}
