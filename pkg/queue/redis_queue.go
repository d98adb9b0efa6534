package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"bookventory/internal/util"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// ImportKind selects which bulk operation a job drives.
type ImportKind string

const (
	KindSales     ImportKind = "sales"
	KindReceiving ImportKind = "receiving"
	KindCatalog   ImportKind = "catalog"
)

// ParseImportKind validates a kind string.
func ParseImportKind(kind string) (ImportKind, bool) {
	switch ImportKind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindSales:
		return KindSales, true
	case KindReceiving:
		return KindReceiving, true
	case KindCatalog:
		return KindCatalog, true
	}
	return "", false
}

// Job is one dequeued bulk import: the parsed rows plus routing fields.
type Job struct {
	ID            string
	Kind          ImportKind
	DistributorID string
	Rows          []map[string]any
}

// Report counts the per-row outcome of a bulk import. Failed rows are
// skipped and counted, never fatal.
type Report struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// JobStatus is the externally visible state of an import job.
type JobStatus struct {
	ID            string     `json:"id"`
	Kind          ImportKind `json:"kind"`
	DistributorID string     `json:"distributorId,omitempty"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	Attempts      int        `json:"attempts"`
	Imported      int        `json:"imported"`
	Skipped       int        `json:"skipped"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Handler runs one import job. Partial progress stands on failure; a retry
// reprocesses remaining-safe operations (ledger arithmetic is per-row).
type Handler func(ctx context.Context, job Job) (Report, error)

// ImportQueue runs bulk imports through a Redis stream with a consumer
// group, bounded retries, and per-job status hashes.
type ImportQueue struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	jobTTL       time.Duration
	maxRetries   int
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxLen       int64
	readCount    int64
	claimCount   int64
	once         sync.Once
}

// Config tunes the import queue. Zero values pick working defaults.
type Config struct {
	Addr       string
	Password   string
	Stream     string
	Group      string
	Consumer   string
	JobTTL     time.Duration
	MaxRetries int
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxLen     int64
	ReadCount  int64
	ClaimCount int64
}

// NewImportQueue validates config and connects the Redis client.
func NewImportQueue(cfg Config) (*ImportQueue, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "imports"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "default"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = util.NewID()
	}
	jobTTL := cfg.JobTTL
	if jobTTL <= 0 {
		jobTTL = 24 * time.Hour
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}
	claimCount := cfg.ClaimCount
	if claimCount <= 0 {
		claimCount = 10
	}

	return &ImportQueue{
		client:       redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		jobTTL:       jobTTL,
		maxRetries:   maxRetries,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxLen:       maxLen,
		readCount:    readCount,
		claimCount:   claimCount,
	}, nil
}

// Enqueue registers a job and appends it to the stream. Rows travel inline
// so a requeued message carries everything a retry needs.
func (q *ImportQueue) Enqueue(ctx context.Context, kind ImportKind, distributorID string, rows []map[string]any) (JobStatus, error) {
	if len(rows) == 0 {
		return JobStatus{}, errors.New("rows required")
	}
	if kind == KindCatalog && strings.TrimSpace(distributorID) == "" {
		return JobStatus{}, errors.New("distributorId required for catalog imports")
	}
	rawRows, err := json.Marshal(rows)
	if err != nil {
		return JobStatus{}, fmt.Errorf("encode rows: %w", err)
	}
	job := JobStatus{
		ID:            util.NewID(),
		Kind:          kind,
		DistributorID: distributorID,
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := q.writeStatus(ctx, job); err != nil {
		return JobStatus{}, err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"job_id":         job.ID,
			"kind":           string(job.Kind),
			"distributor_id": job.DistributorID,
			"rows":           string(rawRows),
		},
	}).Err(); err != nil {
		return JobStatus{}, err
	}
	return job, nil
}

// GetJob reads a job's status hash.
func (q *ImportQueue) GetJob(ctx context.Context, jobID string) (JobStatus, bool, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return JobStatus{}, false, nil
	}
	data, err := q.client.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return JobStatus{}, false, err
	}
	if len(data) == 0 {
		return JobStatus{}, false, nil
	}
	return decodeJobStatus(jobID, data), true, nil
}

// Start launches consumer goroutines that run handler per job.
func (q *ImportQueue) Start(ctx context.Context, concurrency int, handler Handler) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", q.consumerBase, i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

func (q *ImportQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			// best-effort; errors will surface on consume
		}
	})
}

func (q *ImportQueue) consumeLoop(ctx context.Context, consumer string, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := q.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				q.handleMessage(ctx, msg, handler)
			}
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.readCount,
			Block:    q.block,
		}).Result()
		if err != nil {
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.handleMessage(ctx, msg, handler)
			}
		}
	}
}

func (q *ImportQueue) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    q.claimCount,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *ImportQueue) handleMessage(ctx context.Context, msg redis.XMessage, handler Handler) {
	job, ok := decodeJobMessage(msg)
	if !ok {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	status, err := q.markProcessing(ctx, job)
	if err != nil {
		q.ackAndDel(ctx, msg.ID)
		return
	}
	report, err := handler(ctx, job)
	if err == nil {
		_ = q.markDone(ctx, job.ID, report)
		q.ackAndDel(ctx, msg.ID)
		return
	}
	if status.Attempts >= q.maxRetries {
		_ = q.markFailed(ctx, job.ID, err.Error())
		q.ackAndDel(ctx, msg.ID)
		return
	}
	_ = q.markQueued(ctx, job.ID, err.Error())
	if q.retryDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.retryDelay):
		}
	}
	_ = q.requeueAndAck(ctx, msg)
}

func decodeJobMessage(msg redis.XMessage) (Job, bool) {
	jobID, _ := msg.Values["job_id"].(string)
	rawKind, _ := msg.Values["kind"].(string)
	distributorID, _ := msg.Values["distributor_id"].(string)
	rawRows, _ := msg.Values["rows"].(string)
	kind, ok := ParseImportKind(rawKind)
	if jobID == "" || !ok || rawRows == "" {
		return Job{}, false
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(rawRows), &rows); err != nil {
		return Job{}, false
	}
	return Job{ID: jobID, Kind: kind, DistributorID: distributorID, Rows: rows}, true
}

func (q *ImportQueue) ackAndDel(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func (q *ImportQueue) requeueAndAck(ctx context.Context, msg redis.XMessage) error {
	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: msg.Values,
	})
	pipe.XAck(ctx, q.stream, q.group, msg.ID)
	pipe.XDel(ctx, q.stream, msg.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *ImportQueue) markProcessing(ctx context.Context, job Job) (JobStatus, error) {
	status, _, err := q.GetJob(ctx, job.ID)
	if err != nil {
		return JobStatus{}, err
	}
	if status.ID == "" {
		status = JobStatus{ID: job.ID}
	}
	status.Kind = job.Kind
	status.DistributorID = job.DistributorID
	status.Attempts++
	status.Status = StatusProcessing
	status.UpdatedAt = time.Now().UTC()
	if status.CreatedAt.IsZero() {
		status.CreatedAt = status.UpdatedAt
	}
	if err := q.writeStatus(ctx, status); err != nil {
		return JobStatus{}, err
	}
	return status, nil
}

func (q *ImportQueue) markQueued(ctx context.Context, jobID, errMsg string) error {
	status, _, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	status.Status = StatusQueued
	status.ErrorMessage = errMsg
	status.UpdatedAt = time.Now().UTC()
	return q.writeStatus(ctx, status)
}

func (q *ImportQueue) markDone(ctx context.Context, jobID string, report Report) error {
	status, _, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	status.Status = StatusDone
	status.ErrorMessage = ""
	status.Imported = report.Imported
	status.Skipped = report.Skipped
	status.UpdatedAt = time.Now().UTC()
	return q.writeStatus(ctx, status)
}

func (q *ImportQueue) markFailed(ctx context.Context, jobID, errMsg string) error {
	status, _, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	status.Status = StatusFailed
	status.ErrorMessage = errMsg
	status.UpdatedAt = time.Now().UTC()
	return q.writeStatus(ctx, status)
}

func (q *ImportQueue) writeStatus(ctx context.Context, status JobStatus) error {
	key := q.jobKey(status.ID)
	payload := map[string]any{
		"id":            status.ID,
		"kind":          string(status.Kind),
		"distributorId": status.DistributorID,
		"status":        status.Status,
		"error":         status.ErrorMessage,
		"attempts":      strconv.Itoa(status.Attempts),
		"imported":      strconv.Itoa(status.Imported),
		"skipped":       strconv.Itoa(status.Skipped),
		"createdAt":     status.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":     status.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := q.client.HSet(ctx, key, payload).Err(); err != nil {
		return err
	}
	_ = q.client.Expire(ctx, key, q.jobTTL).Err()
	return nil
}

func (q *ImportQueue) jobKey(jobID string) string {
	return fmt.Sprintf("job:%s:%s", q.stream, jobID)
}

func decodeJobStatus(jobID string, data map[string]string) JobStatus {
	status := JobStatus{ID: jobID}
	if v := data["kind"]; v != "" {
		if kind, ok := ParseImportKind(v); ok {
			status.Kind = kind
		}
	}
	status.DistributorID = data["distributorId"]
	status.Status = data["status"]
	status.ErrorMessage = data["error"]
	for key, dst := range map[string]*int{
		"attempts": &status.Attempts,
		"imported": &status.Imported,
		"skipped":  &status.Skipped,
	} {
		if v := data[key]; v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	if v := data["createdAt"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			status.CreatedAt = t
		}
	}
	if v := data["updatedAt"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			status.UpdatedAt = t
		}
	}
	return status
}
