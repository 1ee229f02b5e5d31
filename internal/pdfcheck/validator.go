package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MaxUploadBytes caps accepted uploads at 10 MiB.
	MaxUploadBytes = 10 << 20
	// scanPrefixBytes bounds the script-heuristic scan; the rest of the file
	// is never read here.
	scanPrefixBytes = 50 * 1024
)

var pdfMagic = []byte("%PDF-")

const (
	MsgUnsupportedType = "Type de fichier non supporté. Seuls les fichiers PDF sont acceptés."
	MsgTooLarge        = "Le fichier dépasse la taille maximale autorisée de 10MB."
	MsgNotPDF          = "Le fichier n'est pas un PDF valide."
	MsgJavaScript      = "Le PDF contient potentiellement du code JavaScript non autorisé."
	MsgAutoActions     = "Le PDF contient des actions automatiques potentiellement dangereuses."
	WarnExternalLinks  = "Le PDF contient des liens externes."
)

// RejectionError carries the user-facing reason for refusing an upload.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func Reject(reason string) error {
	return &RejectionError{Reason: reason}
}

func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// Result reports non-fatal findings for an accepted upload.
type Result struct {
	Warnings []string
}

// Validate runs the gatekeeping checks in order, short-circuiting on the
// first failure. The staged file at path is owned by the caller; cleanup is
// the caller's responsibility on every exit path.
func Validate(path, declaredType string, size int64) (*Result, error) {
	if declaredType != "application/pdf" {
		return nil, Reject(MsgUnsupportedType)
	}
	if size > MaxUploadBytes {
		return nil, Reject(MsgTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer f.Close()

	magic := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, Reject(MsgNotPDF)
	}
	if !bytes.Equal(magic, pdfMagic) {
		return nil, Reject(MsgNotPDF)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind staged upload: %w", err)
	}
	prefix := make([]byte, scanPrefixBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scan staged upload: %w", err)
	}
	text := string(prefix[:n])

	if strings.Contains(text, "/JS") || strings.Contains(text, "/JavaScript") {
		return nil, Reject(MsgJavaScript)
	}
	if strings.Contains(text, "/AA") || strings.Contains(text, "/OpenAction") {
		return nil, Reject(MsgAutoActions)
	}

	res := &Result{}
	if strings.Contains(text, "/URI") &&
		(strings.Contains(text, "http://") || strings.Contains(text, "https://")) {
		res.Warnings = append(res.Warnings, WarnExternalLinks)
	}
	return res, nil
}
