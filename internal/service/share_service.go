package service

import (
	"context"
	"fmt"

	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pkg/errs"
	"github.com/veridoc-app/veridoc/internal/repo"
)

// ShareDetail enriches a share with the grantee's display info.
type ShareDetail struct {
	model.DocumentShare
	User *model.User `json:"user,omitempty"`
}

type ShareService struct {
	docs   *repo.DocumentRepo
	shares *repo.ShareRepo
	users  *repo.UserRepo
	audits *repo.AuditRepo
}

func NewShareService(docs *repo.DocumentRepo, shares *repo.ShareRepo, users *repo.UserRepo, audits *repo.AuditRepo) *ShareService {
	return &ShareService{docs: docs, shares: shares, users: users, audits: audits}
}

func (s *ShareService) List(ctx context.Context, documentID int64) ([]ShareDetail, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	shares, err := s.shares.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(shares))
	for _, share := range shares {
		userIDs = append(userIDs, share.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	details := make([]ShareDetail, 0, len(shares))
	for _, share := range shares {
		detail := ShareDetail{DocumentShare: share}
		if user, ok := byID[share.UserID]; ok {
			u := user
			detail.User = &u
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *ShareService) Add(ctx context.Context, actor Actor, documentID, userID int64, permission string) (*model.DocumentShare, error) {
	if permission != model.SharePermissionRead && permission != model.SharePermissionWrite {
		return nil, errs.ErrInvalid
	}
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	share := &model.DocumentShare{
		DocumentID: documentID,
		UserID:     userID,
		Permission: permission,
	}
	if err := s.shares.Add(ctx, share); err != nil {
		return nil, err
	}
	if err := s.audits.Append(ctx, &model.AuditLogEntry{
		DocumentID: documentID,
		UserID:     actor.UserID,
		Action:     model.AuditActionShare,
		Details:    fmt.Sprintf("Partage accordé à l'utilisateur %d (%s)", userID, permission),
	}); err != nil {
		return nil, err
	}
	return share, nil
}

// Remove revokes every share for the pair. Revoking a grant that never
// existed succeeds without touching the audit log.
func (s *ShareService) Remove(ctx context.Context, actor Actor, documentID, userID int64) error {
	removed, err := s.shares.Remove(ctx, documentID, userID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}
	return s.audits.Append(ctx, &model.AuditLogEntry{
		DocumentID: documentID,
		UserID:     actor.UserID,
		Action:     model.AuditActionShare,
		Details:    fmt.Sprintf("Partage révoqué pour l'utilisateur %d", userID),
	})
}
