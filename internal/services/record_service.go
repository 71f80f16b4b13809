// Package services orchestrates the SQLite store and the AMQP sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"glptrack/internal/amqp"
	"glptrack/internal/core"
	"glptrack/internal/storage"
)

// RecordService saves records to SQLite first and then publishes an async
// sync message so the worker can mirror them to the Google sheet. Publish
// failures never fail the request; the record is already durable locally and
// the worker's periodic pending scan will pick it up.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// AppendInjection implements store.InjectionAppender.
func (s *RecordService) AppendInjection(ctx context.Context, r core.InjectionRecord) (string, error) {
	ref, err := s.storage.AppendInjection(ctx, r)
	if err != nil {
		return "", err
	}
	s.publishSync(ctx, storage.TableInjections, ref)
	return ref, nil
}

// AppendSideEffect implements store.SideEffectAppender.
func (s *RecordService) AppendSideEffect(ctx context.Context, r core.SideEffectRecord) (string, error) {
	ref, err := s.storage.AppendSideEffect(ctx, r)
	if err != nil {
		return "", err
	}
	s.publishSync(ctx, storage.TableSideEffects, ref)
	return ref, nil
}

// ListInjections implements store.InjectionLister.
func (s *RecordService) ListInjections(ctx context.Context) ([]core.InjectionRecord, error) {
	return s.storage.ListInjections(ctx)
}

// ListSideEffects implements store.SideEffectLister.
func (s *RecordService) ListSideEffects(ctx context.Context) ([]core.SideEffectRecord, error) {
	return s.storage.ListSideEffects(ctx)
}

func (s *RecordService) publishSync(ctx context.Context, table, ref string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "table", table)
		return
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse record ID", "ref", ref, "error", err)
		return
	}
	if err := s.amqpClient.PublishRecordSync(ctx, table, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"table", table, "id", id, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
