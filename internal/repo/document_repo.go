package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pkg/errs"
	"github.com/veridoc-app/veridoc/internal/pkg/timeutil"
)

var documentColumns = []string{
	"id", "uid", "token", "name", "content_type", "content_key", "content_hash",
	"size", "creator_id", "is_signed", "signature_data", "created_at", "updated_at",
}

// Fields that are assigned once at creation and can never be patched.
var immutableDocumentFields = map[string]struct{}{
	"id":         {},
	"uid":        {},
	"token":      {},
	"creator_id": {},
	"created_at": {},
}

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	now := timeutil.NowUnix()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	data := map[string]interface{}{
		"uid":            doc.UID,
		"token":          doc.Token,
		"name":           doc.Name,
		"content_type":   doc.ContentType,
		"content_key":    doc.ContentKey,
		"content_hash":   doc.ContentHash,
		"size":           doc.Size,
		"creator_id":     doc.CreatorID,
		"is_signed":      doc.IsSigned,
		"signature_data": doc.SignatureData,
		"created_at":     doc.CreatedAt,
		"updated_at":     doc.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	doc.ID, err = result.LastInsertId()
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, errs.ErrNotFound
	}
	return scanDocument(rows)
}

// List returns all documents, most recently updated first.
func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "updated_at desc",
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Update merges the given fields over the existing record and bumps
// updated_at. Immutable fields are stripped rather than rejected, so callers
// cannot rewrite uid/token/creator under any circumstance.
func (r *DocumentRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	update := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		if _, immutable := immutableDocumentFields[key]; immutable {
			continue
		}
		update[key] = value
	}
	if len(update) == 0 {
		return nil
	}
	if _, ok := update["updated_at"]; !ok {
		update["updated_at"] = timeutil.NowUnix()
	}
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("documents", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var doc model.Document
	if err := rows.Scan(
		&doc.ID, &doc.UID, &doc.Token, &doc.Name, &doc.ContentType, &doc.ContentKey,
		&doc.ContentHash, &doc.Size, &doc.CreatorID, &doc.IsSigned, &doc.SignatureData,
		&doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}
