package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pkg/timeutil"
)

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

func (r *ShareRepo) Add(ctx context.Context, share *model.DocumentShare) error {
	share.CreatedAt = timeutil.NowUnix()
	data := map[string]interface{}{
		"document_id": share.DocumentID,
		"user_id":     share.UserID,
		"permission":  share.Permission,
		"created_at":  share.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("document_shares", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	share.ID, err = result.LastInsertId()
	return err
}

func (r *ShareRepo) ListByDocument(ctx context.Context, documentID int64) ([]model.DocumentShare, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"_orderby":    "created_at desc, id desc",
	}
	sqlStr, args, err := builder.BuildSelect("document_shares", where,
		[]string{"id", "document_id", "user_id", "permission", "created_at"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shares := make([]model.DocumentShare, 0)
	for rows.Next() {
		var share model.DocumentShare
		if err := rows.Scan(&share.ID, &share.DocumentID, &share.UserID, &share.Permission, &share.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// Remove deletes every share for the pair and reports how many rows went
// away. Removing a grant that never existed is a no-op, not an error.
func (r *ShareRepo) Remove(ctx context.Context, documentID, userID int64) (int64, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"user_id":     userID,
	}
	sqlStr, args, err := builder.BuildDelete("document_shares", where)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
