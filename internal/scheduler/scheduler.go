package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/unw4/TrustChain/internal/domain/telemetry"
	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/internal/metrics"
	"github.com/unw4/TrustChain/internal/sui"
	"github.com/unw4/TrustChain/pkg/logger"
)

// Ledger is the write half of the gateway used by ticks.
type Ledger interface {
	Submit(ctx context.Context, block *sui.TxBuilder) (*sui.TxResult, error)
	Target(module, function string) string
}

// submitTimeout bounds one tick's ledger submission so a hung node cannot
// pin tick goroutines forever.
const submitTimeout = 30 * time.Second

// every is a constant-delay cron schedule with millisecond resolution.
// cron's own ConstantDelaySchedule rounds to whole seconds, which would
// break sub-second job intervals.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// entry tracks the live cron registration for one job key. gen guards
// against ticks from a replaced or removed registration.
type entry struct {
	id  cron.EntryID
	gen uint64
}

// Scheduler owns the recurring job set. Each job's ticks run in their own
// goroutine (the cron runner spawns one per invocation), so one job's slow
// or failing submission never delays another job's schedule.
//
// First-tick policy: a job's first tick fires one full interval after it
// is added, never immediately.
type Scheduler struct {
	cron    *cron.Cron
	store   Store
	ledger  Ledger
	hub     *fanout.Hub
	gen     *telemetry.Generator
	log     *logger.Logger
	baseCtx context.Context

	mu      sync.Mutex
	entries map[Key]entry
	nextGen uint64
}

// Config wires the scheduler's collaborators.
type Config struct {
	Store     Store
	Ledger    Ledger
	Hub       *fanout.Hub
	Generator *telemetry.Generator
	Logger    *logger.Logger
}

// New creates a stopped scheduler; call Start (and optionally Restore)
// to begin ticking.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Store == nil {
		return nil, sui.InvalidParameterf("job store is required")
	}
	if cfg.Ledger == nil {
		return nil, sui.InvalidParameterf("ledger is required")
	}
	if cfg.Hub == nil {
		return nil, sui.InvalidParameterf("fanout hub is required")
	}
	gen := cfg.Generator
	if gen == nil {
		gen = telemetry.NewGenerator()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("scheduler")
	}

	s := &Scheduler{
		cron:    cron.New(),
		store:   cfg.Store,
		ledger:  cfg.Ledger,
		hub:     cfg.Hub,
		gen:     gen,
		log:     log,
		baseCtx: context.Background(),
		entries: make(map[Key]entry),
	}
	return s, nil
}

// Start begins dispatching ticks. Ticks derive their contexts from ctx;
// cancelling it aborts in-flight submissions during shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
}

// Stop cancels future ticks and waits for in-flight ones to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Restore re-registers every enabled job found in the store. Called once
// at startup; tick state is not persisted, so the first tick after a
// restart is one interval out.
func (s *Scheduler) Restore(ctx context.Context) error {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range jobs {
		if !job.Enabled {
			continue
		}
		s.scheduleLocked(job)
	}
	s.log.Infof("restored %d simulation jobs", len(s.entries))
	return nil
}

// AddJob creates or replaces the job for (assetId, kind). Replacement is
// in place: the previous registration is cancelled before the new one is
// scheduled, so at most one job fires per key. The job is persisted before
// scheduling; its first tick is at now + interval.
func (s *Scheduler) AddJob(ctx context.Context, job Job) (Job, error) {
	job, err := job.normalize(time.Now())
	if err != nil {
		return Job{}, err
	}

	if err := s.store.Put(ctx, job); err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[job.Key()]; ok {
		s.cron.Remove(old.id)
	}
	s.scheduleLocked(job)

	s.log.WithField("asset_id", job.AssetID).
		WithField("kind", job.Kind).
		WithField("interval_ms", job.IntervalMillis).
		Info("simulation job scheduled")
	return job, nil
}

// RemoveJob cancels future ticks for the key and deletes the stored job.
// Idempotent: removing an unknown key succeeds. After RemoveJob returns no
// new tick is scheduled for the key; a tick already in flight may still
// complete and broadcast once.
func (s *Scheduler) RemoveJob(ctx context.Context, key Key) error {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.cron.Remove(e.id)
		delete(s.entries, key)
	}
	metrics.ActiveJobs(float64(len(s.entries)))
	s.mu.Unlock()

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	s.log.WithField("asset_id", key.AssetID).
		WithField("kind", key.Kind).
		Info("simulation job removed")
	return nil
}

// GetJob fetches the stored job for a key.
func (s *Scheduler) GetJob(ctx context.Context, key Key) (Job, error) {
	return s.store.Get(ctx, key)
}

// ListJobs returns all stored jobs.
func (s *Scheduler) ListJobs(ctx context.Context) ([]Job, error) {
	return s.store.List(ctx)
}

// scheduleLocked registers a cron entry for the job. Caller holds the lock.
func (s *Scheduler) scheduleLocked(job Job) {
	s.nextGen++
	gen := s.nextGen

	id := s.cron.Schedule(every(job.Interval()), cron.FuncJob(func() {
		s.tick(job, gen)
	}))
	s.entries[job.Key()] = entry{id: id, gen: gen}
	metrics.ActiveJobs(float64(len(s.entries)))
}

// tick runs one simulation cycle for a job. Errors are isolated: a failed
// tick logs, counts, publishes nothing, and leaves the schedule intact.
func (s *Scheduler) tick(job Job, gen uint64) {
	// A replaced or removed registration may still have a dispatch queued;
	// drop it here rather than produce a reading for a dead job.
	s.mu.Lock()
	current, ok := s.entries[job.Key()]
	s.mu.Unlock()
	if !ok || current.gen != gen {
		return
	}

	reading := s.gen.Generate(job.AssetID, job.Kind, telemetry.Params{
		BaseValue:          job.BaseValue,
		Variance:           job.Variance,
		AnomalyProbability: job.AnomalyProbability,
	})

	ctx, cancel := context.WithTimeout(s.baseCtx, submitTimeout)
	defer cancel()

	if err := s.record(ctx, job, reading); err != nil {
		metrics.SensorTick(job.Kind, "failed")
		s.log.WithError(err).
			WithField("asset_id", job.AssetID).
			WithField("kind", job.Kind).
			Warn("sensor tick failed, skipping broadcast")
		return
	}
	metrics.SensorTick(job.Kind, "success")

	// Broadcast strictly after the confirmed write.
	s.hub.Publish(job.AssetID, fanout.Event{Type: fanout.EventReading, Reading: reading})

	if reading.IsAnomaly {
		metrics.SensorAnomaly(job.Kind)
		s.hub.Publish(job.AssetID, fanout.Event{Type: fanout.EventAnomaly, Reading: reading})
		s.log.WithField("asset_id", job.AssetID).
			WithField("kind", job.Kind).
			WithField("value", reading.Value).
			WithField("unit", reading.Unit).
			Warn("anomaly detected")
	}
}

// record writes the reading to the ledger: the reading is constructed and
// attached to the asset within one atomic transaction block.
func (s *Scheduler) record(ctx context.Context, job Job, reading telemetry.Reading) error {
	block := sui.NewTxBuilder()
	ref := block.MoveCall(s.ledger.Target("sensor_data", "new_reading"),
		sui.PureString(reading.SensorID),
		sui.PureU64(uint64(reading.Timestamp)),
		sui.PureString(reading.Kind),
		sui.PureU64(uint64(reading.Value)),
		sui.PureString(reading.Unit),
		sui.PureBool(reading.IsAnomaly),
	)
	block.MoveCall(s.ledger.Target(job.TargetModule, "add_sensor_reading"),
		sui.Object(job.AssetID),
		ref,
	)

	_, err := s.ledger.Submit(ctx, block)
	return err
}
