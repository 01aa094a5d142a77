package loki

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBatchSize     = 20
	defaultFlushInterval = time.Second
	pushPath             = "/loki/api/v1/push"
)

// Writer is an io.Writer that ships each log line to Loki's push API.
type Writer struct {
	pushURL   string
	labels    map[string]string
	client    *http.Client
	batchSize int

	mu      sync.Mutex
	pending [][2]string
	ticker  *time.Ticker
	full    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	closed  sync.Once
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// NewWriter returns nil when baseURL is empty so callers can skip shipping.
func NewWriter(baseURL string, labels map[string]string) *Writer {
	return newWriter(baseURL, labels, defaultBatchSize, defaultFlushInterval)
}

func newWriter(baseURL string, labels map[string]string, batchSize int, interval time.Duration) *Writer {
	if baseURL == "" {
		return nil
	}
	w := &Writer{
		pushURL:   strings.TrimSuffix(baseURL, "/") + pushPath,
		labels:    labels,
		client:    &http.Client{Timeout: 5 * time.Second},
		batchSize: batchSize,
		pending:   make([][2]string, 0, batchSize),
		ticker:    time.NewTicker(interval),
		full:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	var full bool

	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.pending = append(w.pending, [2]string{now, string(line)})
	}
	full = len(w.pending) >= w.batchSize
	w.mu.Unlock()

	if full {
		select {
		case w.full <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

// loop owns every push so a slow Loki never blocks Write.
func (w *Writer) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case <-w.full:
			w.Flush()
		case <-w.ticker.C:
			w.Flush()
		}
	}
}

// Flush pushes buffered lines. Push failures drop the batch.
func (w *Writer) Flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	values := w.pending
	w.pending = make([][2]string, 0, w.batchSize)
	w.mu.Unlock()

	raw, err := json.Marshal(pushRequest{Streams: []stream{{Stream: w.labels, Values: values}}})
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, w.pushURL, bytes.NewReader(raw))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (w *Writer) Close() error {
	w.closed.Do(func() {
		w.ticker.Stop()
		close(w.done)
		<-w.stopped
		w.Flush()
	})
	return nil
}
