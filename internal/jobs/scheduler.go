package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zstd"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ticketdesk/internal/config"
)

type Snapshotter interface {
	Snapshot(ctx context.Context) (map[string]json.RawMessage, error)
}

type SnapshotWriter interface {
	PutSnapshot(ctx context.Context, name string, data []byte) error
}

type Scheduler struct {
	cron     *cron.Cron
	source   Snapshotter
	target   SnapshotWriter
	schedule string
	compress bool
	clock    clockwork.Clock
	log      zerolog.Logger
}

func NewScheduler(source Snapshotter, target SnapshotWriter, cfg config.BackupConfig, clock clockwork.Clock, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		source:   source,
		target:   target,
		schedule: cfg.Schedule,
		compress: cfg.Compress,
		clock:    clock,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.target == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.backup); err != nil {
		return fmt.Errorf("schedule backup %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("backup scheduler started")
	return nil
}

// Stop waits up to five seconds for a running backup to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("backup still running at shutdown")
	}
}

func (s *Scheduler) backup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	name, err := s.RunBackup(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("store backup failed")
		return
	}
	s.log.Info().Str("object", name).Msg("store backup written")
}

// RunBackup uploads one snapshot of the store and returns the object name.
func (s *Scheduler) RunBackup(ctx context.Context) (string, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := "snapshots/" + s.clock.Now().UTC().Format(time.RFC3339) + ".json"
	if s.compress {
		if data, err = compressSnapshot(data); err != nil {
			return "", err
		}
		name += ".zst"
	}
	if err := s.target.PutSnapshot(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

func compressSnapshot(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}
