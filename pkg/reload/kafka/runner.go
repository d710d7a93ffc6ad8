// Package kafka consumes exclusion updates from a Kafka topic and applies
// them to the live exclusion snapshot.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/crs-transform/internal/cache"
	"github.com/mohammed-shakir/crs-transform/internal/core/observability"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

type Runner struct {
	log      *slog.Logger
	cfg      ReloadConfig
	store    *transform.ExclusionStore
	baseline *transform.Exclusions
	cache    cache.Interface
	ms       *metricSet
	ver      *versionLedger
	assigned atomic.Bool
	assignMu sync.RWMutex
	assign   map[int32]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

type Options struct {
	Logger   *slog.Logger
	Register prometheus.Registerer
	// Cache is flushed after every applied update.
	Cache cache.Interface
}

// New builds a runner over store. The snapshot held at construction is the
// baseline restored by a reset.
func New(cfg ReloadConfig, store *transform.ExclusionStore, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	r := &Runner{
		log:    opts.Logger,
		cfg:    cfg.withDefaults(),
		store:  store,
		cache:  opts.Cache,
		ms:     newMetricSet(opts.Register),
		ver:    newVersionLedger(1024),
		assign: map[int32]struct{}{},
	}
	if store != nil {
		r.baseline = store.Load()
	}
	return r
}

// Start joins the process-private consumer group and replays the topic from
// the oldest offset. It returns immediately when reload is disabled.
func (r *Runner) Start(ctx context.Context) error {
	if !r.cfg.active() {
		r.log.Info("exclusion reload disabled", "driver", r.cfg.Driver, "enabled", r.cfg.Enabled)
		return nil
	}
	if r.store == nil {
		return errors.New("kafka runner: exclusion store is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = r.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = r.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = r.cfg.RebalanceTimeout
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(r.cfg.Brokers, r.cfg.GroupID(), cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("consumer group: %w", err)
	}

	h := &groupHandler{
		setup: func(sess sarama.ConsumerGroupSession) {
			claims := sess.Claims()
			r.assignMu.Lock()
			r.assigned.Store(true)
			r.assign = map[int32]struct{}{}
			for _, parts := range claims {
				for _, p := range parts {
					r.assign[p] = struct{}{}
				}
			}
			r.assignMu.Unlock()
		},
		cleanup: func(sarama.ConsumerGroupSession) {
			r.assignMu.Lock()
			r.assigned.Store(false)
			r.assign = map[int32]struct{}{}
			r.assignMu.Unlock()
		},
		process: r.handleMessage,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if err := group.Close(); err != nil {
				r.log.Error("kafka consumer group close", "err", err)
			}
		}()

		for {
			if err := group.Consume(ctx, []string{r.cfg.Topic}, h); err != nil {
				r.log.Error("kafka consume error", "err", err)
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for err := range group.Errors() {
			r.log.Error("kafka group error", "err", err)
		}
	}()

	r.log.Info("exclusion reload runner started",
		"topic", r.cfg.Topic, "group", r.cfg.GroupID(), "brokers", r.cfg.Brokers)
	return nil
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.log.Info("exclusion reload runner stopped")
}

// Readiness reports the assigned partitions. A disabled runner is always
// ready.
func (r *Runner) Readiness() (ready bool, partitions []int32) {
	if !r.cfg.active() {
		return true, nil
	}
	if !r.assigned.Load() {
		return false, nil
	}
	r.assignMu.RLock()
	defer r.assignMu.RUnlock()
	for p := range r.assign {
		partitions = append(partitions, p)
	}
	return true, partitions
}

func (r *Runner) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	var w WireEvent
	if err := json.Unmarshal(msg.Value, &w); err != nil {
		// a poison message must not stall the partition
		r.ms.msgs.WithLabelValues("error").Inc()
		r.log.Warn("exclusion update decode failed", "offset", msg.Offset, "err", err)
		return nil
	}
	if err := w.Validate(); err != nil {
		r.ms.msgs.WithLabelValues("error").Inc()
		r.log.Warn("exclusion update rejected", "offset", msg.Offset, "err", err)
		return nil
	}

	ts := w.TS
	if ts.IsZero() {
		ts = msg.Timestamp
	}
	err := r.apply(ctx, w)
	r.observe(w.Op, err, time.Since(start))
	if err == nil && !ts.IsZero() {
		observability.SetReloadLagSeconds(time.Since(ts).Seconds())
	}
	return err
}

func (r *Runner) observe(op Op, err error, dur time.Duration) {
	if op == "" {
		op = "unknown"
	}
	if err != nil {
		r.ms.msgs.WithLabelValues("error").Inc()
	} else {
		r.ms.msgs.WithLabelValues("ok").Inc()
	}
	r.ms.proc.WithLabelValues(string(op)).Observe(dur.Seconds())
}

// apply swaps in the updated snapshot and flushes cached responses, which
// may have been computed under the old exclusions. The version is recorded
// only after the flush; on a flush error the message is redelivered and the
// update, which is idempotent, runs again.
func (r *Runner) apply(ctx context.Context, w WireEvent) error {
	key := w.dedupeKey()
	if r.ver.stale(key, w.Version) {
		last, _ := r.ver.last(key)
		r.ms.apply.WithLabelValues("skip_version").Inc()
		r.log.Debug("stale exclusion update skipped", "key", key, "version", w.Version, "applied", last)
		return nil
	}

	r.store.Update(func(cur *transform.Exclusions) *transform.Exclusions {
		switch w.Op {
		case OpSet:
			return cur.WithTargets(w.Source, w.Targets)
		case OpAdd:
			return cur.WithAdded(w.Source, w.Targets)
		case OpRemove:
			return cur.WithRemoved(w.Source, w.Targets)
		default:
			if r.baseline == nil {
				return transform.NewExclusions(nil)
			}
			return r.baseline
		}
	})
	r.ms.apply.WithLabelValues(string(w.Op)).Inc()
	r.log.Info("exclusions updated", "op", w.Op, "source", w.Source, "targets", w.Targets, "version", w.Version)

	if err := r.flushCache(ctx); err != nil {
		return err
	}
	r.ver.record(key, w.Version)
	r.ms.version.WithLabelValues(key).Set(float64(w.Version))
	return nil
}

// flushCache tries the flush up to FlushAttempts times, waiting FlushBackoff
// (doubling) in between.
func (r *Runner) flushCache(ctx context.Context) error {
	wait := r.cfg.FlushBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = r.cache.Flush(ctx); err == nil {
			r.ms.flushes.WithLabelValues("ok").Inc()
			return nil
		}
		r.ms.flushes.WithLabelValues("error").Inc()
		r.log.Warn("response cache flush failed", "attempt", attempt, "err", err)
		if attempt >= r.cfg.FlushAttempts {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("flush response cache: %w", ctx.Err())
		}
		wait *= 2
	}
	return fmt.Errorf("flush response cache: %w", err)
}

type groupHandler struct {
	setup   func(sarama.ConsumerGroupSession)
	cleanup func(sarama.ConsumerGroupSession)
	process func(context.Context, *sarama.ConsumerMessage) error
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	if h.setup != nil {
		h.setup(sess)
	}
	return nil
}

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	if h.cleanup != nil {
		h.cleanup(sess)
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for msg := range claim.Messages() {
		if err := h.process(ctx, msg); err != nil {
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
