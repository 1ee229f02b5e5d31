package provenance

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/veridoc-app/veridoc/internal/idgen"
)

const watermarkDesc = "fontname:Helvetica, points:7, scalefactor:1 abs, position:br, offset:-10 8, rotation:0, opacity:.6, fillcolor:#404040, backgroundcolor:#F2F2F2, margins:3"

// SignatureInfo describes the signer line stamped above the footer.
type SignatureInfo struct {
	Label    string
	SignedAt time.Time
}

type Embedder struct {
	appName string
	org     string
	contact string
	now     func() time.Time
}

func NewEmbedder(appName, org, contact string) *Embedder {
	return &Embedder{
		appName: appName,
		org:     org,
		contact: contact,
		now:     time.Now,
	}
}

// ContentHash is the SHA-256 of the bytes as given. Every embed call hashes
// its own input, so re-embedding stored content stamps the hash of that
// already-embedded payload rather than the original upload.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Embed stamps per-page footers and document metadata into a copy of in and
// returns the new bytes; in is never modified. Callers treat a non-nil error
// as non-fatal and fall back to the unmodified input.
func (e *Embedder) Embed(ctx context.Context, in []byte, uid, token string, sig *SignatureInfo) ([]byte, string, error) {
	contentHash := ContentHash(in)

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(in), conf)
	if err != nil {
		return nil, contentHash, fmt.Errorf("page count: %w", err)
	}
	if pages == 0 {
		return nil, contentHash, fmt.Errorf("document has no pages")
	}

	shortUID := idgen.ShortRef(uid)
	shortToken := idgen.ShortRef(token)

	marks := make(map[int]*pdfmodel.Watermark, pages)
	for page := 1; page <= pages; page++ {
		text := fmt.Sprintf("%s: P%d/%d | UID:%s | Token:%s", e.appName, page, pages, shortUID, shortToken)
		if sig != nil {
			text = fmt.Sprintf("%s - %s", sig.Label, sig.SignedAt.Format("02/01/2006 15:04:05")) + "\n" + text
		}
		wm, err := api.TextWatermark(text, watermarkDesc, true, false, types.POINTS)
		if err != nil {
			return nil, contentHash, fmt.Errorf("build watermark: %w", err)
		}
		marks[page] = wm
	}

	var marked bytes.Buffer
	if err := api.AddWatermarksMap(bytes.NewReader(in), &marked, marks, conf); err != nil {
		return nil, contentHash, fmt.Errorf("stamp watermarks: %w", err)
	}

	var out bytes.Buffer
	props := e.metadata(uid, token, contentHash, sig)
	if err := api.AddProperties(bytes.NewReader(marked.Bytes()), &out, props, conf); err != nil {
		return nil, contentHash, fmt.Errorf("set metadata: %w", err)
	}

	logutil.GetLogger(ctx).Debug("provenance embedded",
		zap.String("uid", uid),
		zap.Int("pages", pages),
		zap.Bool("signed", sig != nil),
	)
	return out.Bytes(), contentHash, nil
}

func (e *Embedder) metadata(uid, token, contentHash string, sig *SignatureInfo) map[string]string {
	stampedAt := e.now().Format(time.RFC3339)
	keywords := []string{uid, token, contentHash}
	if sig != nil {
		keywords = append(keywords, "signed", sig.Label, sig.SignedAt.Format(time.RFC3339))
	}
	return map[string]string{
		"Title":    fmt.Sprintf("Document %s", uid),
		"Author":   e.org,
		"Creator":  e.appName,
		"Producer": fmt.Sprintf("%s (%s)", e.appName, e.org),
		"Subject": fmt.Sprintf("UID:%s Token:%s SHA256:%s Horodatage:%s Vérification:%s",
			uid, token, contentHash, stampedAt, e.contact),
		"Keywords": strings.Join(keywords, ", "),
	}
}
