package cron_test

import (
	"bytes"
	"sync"
)

// syncWriter serializes writes from job goroutines into buf.
type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
