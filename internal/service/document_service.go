package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/veridoc-app/veridoc/internal/filestore"
	"github.com/veridoc-app/veridoc/internal/idgen"
	"github.com/veridoc-app/veridoc/internal/model"
	"github.com/veridoc-app/veridoc/internal/pdfcheck"
	"github.com/veridoc-app/veridoc/internal/provenance"
	"github.com/veridoc-app/veridoc/internal/repo"
)

// Actor is the authenticated caller context injected by the upstream auth
// layer.
type Actor struct {
	UserID    int64
	CompanyID int64
}

// SignaturePrefix is the fixed prefix of every signature token. The token is
// a traceability placeholder, not a PKI signature.
const SignaturePrefix = "SIG-"

var signaturePattern = regexp.MustCompile(`^SIG-(\d{14})-USR(\d+)-[0-9a-f]+$`)

const (
	cacheSize = 512
	cacheTTL  = 30 * time.Second
)

type UploadOptions struct {
	GenerateNewUID  bool `json:"generateNewUid"`
	AddToken        bool `json:"addToken"`
	SignAfterImport bool `json:"signAfterImport"`
}

func DefaultUploadOptions() UploadOptions {
	return UploadOptions{GenerateNewUID: true, AddToken: true}
}

type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	StagedPath  string
	Options     UploadOptions
}

type VerifyResult struct {
	Match       bool   `json:"match"`
	ContentHash string `json:"contentHash"`
}

type DocumentService struct {
	docs     *repo.DocumentRepo
	audits   *repo.AuditRepo
	users    *repo.UserRepo
	store    filestore.Store
	embedder *provenance.Embedder
	cache    *expirable.LRU[int64, model.Document]
	now      func() time.Time
}

func NewDocumentService(docs *repo.DocumentRepo, audits *repo.AuditRepo, users *repo.UserRepo, store filestore.Store, embedder *provenance.Embedder) *DocumentService {
	return &DocumentService{
		docs:     docs,
		audits:   audits,
		users:    users,
		store:    store,
		embedder: embedder,
		cache:    expirable.NewLRU[int64, model.Document](cacheSize, nil, cacheTTL),
		now:      time.Now,
	}
}

// CreateFromUpload validates the staged upload, issues identifiers, embeds
// provenance and persists the result. The staged file itself is owned by the
// caller and removed there on every exit path.
func (s *DocumentService) CreateFromUpload(ctx context.Context, actor Actor, in UploadInput) (*model.Document, error) {
	res, err := pdfcheck.Validate(in.StagedPath, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}
	for _, warning := range res.Warnings {
		logutil.GetLogger(ctx).Warn("upload accepted with warning",
			zap.String("name", in.Name),
			zap.String("warning", warning),
		)
	}

	raw, err := os.ReadFile(in.StagedPath)
	if err != nil {
		return nil, fmt.Errorf("read staged upload: %w", err)
	}

	now := s.now()
	uid := idgen.NewUID(now, actor.UserID, actor.CompanyID)
	tok := idgen.NewToken(now)

	content := raw
	if in.Options.GenerateNewUID || in.Options.AddToken {
		embedded, _, err := s.embedder.Embed(ctx, raw, uid, tok, nil)
		if err != nil {
			logutil.GetLogger(ctx).Error("provenance embedding failed, storing original bytes",
				zap.String("uid", uid), zap.Error(err))
		} else {
			content = embedded
		}
	}
	// The record tracks the hash of the bytes as stored; the embedder stamps
	// the hash of whatever input it was handed into the PDF metadata.
	contentHash := provenance.ContentHash(content)

	key := contentKey(uid)
	if err := s.store.Save(ctx, key, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	doc := &model.Document{
		UID:         uid,
		Token:       tok,
		Name:        in.Name,
		ContentType: in.ContentType,
		ContentKey:  key,
		ContentHash: contentHash,
		Size:        humanSize(int64(len(content))),
		CreatorID:   actor.UserID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.audits.Append(ctx, &model.AuditLogEntry{
		DocumentID: doc.ID,
		UserID:     actor.UserID,
		Action:     model.AuditActionCreate,
		Details:    fmt.Sprintf("Import du document %q (%s)", doc.Name, doc.Size),
	}); err != nil {
		return nil, err
	}

	if in.Options.SignAfterImport {
		return s.Sign(ctx, actor, doc.ID)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	if cached, ok := s.cache.Get(id); ok {
		doc := cached
		return &doc, nil
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, *doc)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.docs.List(ctx)
}

// Sign marks the document signed and re-embeds its stored content with a
// signature footer. Signing an already signed document is a no-op; isSigned
// never transitions back to false.
func (s *DocumentService) Sign(ctx context.Context, actor Actor, id int64) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsSigned {
		return doc, nil
	}

	now := s.now()
	signatureData := fmt.Sprintf("%s%s-USR%d-%s", SignaturePrefix, now.Format("20060102150405"), actor.UserID, idgen.RandomHex(8))
	sig := &provenance.SignatureInfo{
		Label:    s.signerLabel(ctx, actor.UserID),
		SignedAt: now,
	}

	raw, err := s.readContent(ctx, doc.ContentKey)
	if err != nil {
		return nil, err
	}
	content := raw
	embedded, _, err := s.embedder.Embed(ctx, raw, doc.UID, doc.Token, sig)
	if err != nil {
		logutil.GetLogger(ctx).Error("signature embedding failed, keeping stored bytes",
			zap.String("uid", doc.UID), zap.Error(err))
	} else {
		content = embedded
		if err := s.store.Save(ctx, doc.ContentKey, bytes.NewReader(content), int64(len(content))); err != nil {
			return nil, fmt.Errorf("store signed content: %w", err)
		}
	}
	contentHash := provenance.ContentHash(content)

	if err := s.docs.Update(ctx, id, map[string]interface{}{
		"is_signed":      true,
		"signature_data": signatureData,
		"content_hash":   contentHash,
		"size":           humanSize(int64(len(content))),
	}); err != nil {
		return nil, err
	}
	s.cache.Remove(id)

	if err := s.audits.Append(ctx, &model.AuditLogEntry{
		DocumentID: id,
		UserID:     actor.UserID,
		Action:     model.AuditActionSign,
		Details:    fmt.Sprintf("Signature du document (%s)", signatureData),
	}); err != nil {
		return nil, err
	}
	return s.docs.GetByID(ctx, id)
}

// Download re-embeds current provenance into a copy of the stored bytes.
// The stored content itself is never mutated by a download.
func (s *DocumentService) Download(ctx context.Context, actor Actor, id int64) (*model.Document, []byte, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	raw, err := s.readContent(ctx, doc.ContentKey)
	if err != nil {
		return nil, nil, err
	}

	var sig *provenance.SignatureInfo
	if doc.IsSigned {
		sig = s.signatureInfo(ctx, doc)
	}
	content := raw
	embedded, _, err := s.embedder.Embed(ctx, raw, doc.UID, doc.Token, sig)
	if err != nil {
		logutil.GetLogger(ctx).Error("download embedding failed, serving stored bytes",
			zap.String("uid", doc.UID), zap.Error(err))
	} else {
		content = embedded
	}

	// Recorded before the response body is streamed.
	if err := s.audits.Append(ctx, &model.AuditLogEntry{
		DocumentID: id,
		UserID:     actor.UserID,
		Action:     model.AuditActionDownload,
		Details:    fmt.Sprintf("Téléchargement du document %q", doc.Name),
	}); err != nil {
		return nil, nil, err
	}
	return doc, content, nil
}

func (s *DocumentService) AuditLogs(ctx context.Context, id int64) ([]model.AuditLogEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.audits.ListByDocument(ctx, id)
}

// Verify recomputes the stored content hash and compares it with the hash
// recorded at the last embedding.
func (s *DocumentService) Verify(ctx context.Context, id int64) (*VerifyResult, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := s.readContent(ctx, doc.ContentKey)
	if err != nil {
		return nil, err
	}
	hash := provenance.ContentHash(raw)
	return &VerifyResult{Match: hash == doc.ContentHash, ContentHash: hash}, nil
}

func (s *DocumentService) readContent(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return raw, nil
}

func (s *DocumentService) signerLabel(ctx context.Context, userID int64) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user.DisplayName == "" {
		return fmt.Sprintf("Signé par l'utilisateur %d", userID)
	}
	return "Signé par " + user.DisplayName
}

func (s *DocumentService) signatureInfo(ctx context.Context, doc *model.Document) *provenance.SignatureInfo {
	match := signaturePattern.FindStringSubmatch(doc.SignatureData)
	if match == nil {
		return &provenance.SignatureInfo{Label: "Document signé", SignedAt: time.Unix(doc.UpdatedAt, 0)}
	}
	signedAt, err := time.ParseInLocation("20060102150405", match[1], time.Local)
	if err != nil {
		signedAt = time.Unix(doc.UpdatedAt, 0)
	}
	signerID, _ := strconv.ParseInt(match[2], 10, 64)
	return &provenance.SignatureInfo{Label: s.signerLabel(ctx, signerID), SignedAt: signedAt}
}

func contentKey(uid string) string {
	return uid + ".pdf"
}

func humanSize(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
