package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pkg/timeutil"
)

// AuditRepo is append-only by construction: the type exposes no update or
// delete operation.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	if entry.Timestamp == 0 {
		entry.Timestamp = timeutil.NowUnix()
	}
	data := map[string]interface{}{
		"document_id": entry.DocumentID,
		"user_id":     entry.UserID,
		"action":      entry.Action,
		"details":     entry.Details,
		"timestamp":   entry.Timestamp,
	}
	sqlStr, args, err := builder.BuildInsert("audit_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	entry.ID, err = result.LastInsertId()
	return err
}

// ListByDocument returns entries newest first.
func (r *AuditRepo) ListByDocument(ctx context.Context, documentID int64) ([]model.AuditLogEntry, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"_orderby":    "timestamp desc, id desc",
	}
	sqlStr, args, err := builder.BuildSelect("audit_logs", where,
		[]string{"id", "document_id", "user_id", "action", "details", "timestamp"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var entry model.AuditLogEntry
		if err := rows.Scan(&entry.ID, &entry.DocumentID, &entry.UserID, &entry.Action, &entry.Details, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
