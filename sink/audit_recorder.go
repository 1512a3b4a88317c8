package sink

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/observability"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var _ contract.TxSink = (*AuditRecorder)(nil)

// AuditRecorder writes one EditRecord per MessageEdited event, inside the
// transaction applying the edit. The record is built from the snapshot
// carried by the event; the message is never read back.
type AuditRecorder struct {
	log     *slog.Logger
	records contract.EditRecordWriter
	metrics *observability.Metrics
}

func NewAuditRecorder(log *slog.Logger, records contract.EditRecordWriter, metrics *observability.Metrics) *AuditRecorder {
	return &AuditRecorder{log: log, records: records, metrics: metrics}
}

// ConsumeTx returns the storage error as is: the bus aborts the edit with it.
func (a *AuditRecorder) ConsumeTx(_ context.Context, txn *badger.Txn, e event.Event) error {
	edited, ok := e.Payload.(event.MessageEdited)
	if !ok {
		return nil
	}
	rec, err := a.records.InsertEditRecord(txn, domain.EditRecord{
		ID:              uuid.NewString(),
		MessageID:       edited.MessageID,
		PreviousContent: edited.Previous,
		NewContent:      edited.New,
		EditorID:        edited.EditorID,
		LoggedAt:        edited.EditedAt,
	})
	if err != nil {
		return fmt.Errorf("edit record for %s: %w", edited.MessageID, err)
	}
	a.metrics.EditRecorded()
	a.log.Debug("edit recorded", "message", rec.MessageID, "record", rec.ID, "editor", rec.EditorID)
	return nil
}
