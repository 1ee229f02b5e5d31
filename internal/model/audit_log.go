package model

const (
	AuditActionCreate   = "create"
	AuditActionSign     = "sign"
	AuditActionShare    = "share"
	AuditActionDownload = "download"
)

type AuditLogEntry struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"documentId"`
	UserID     int64  `json:"userId"`
	Action     string `json:"action"`
	Details    string `json:"details"`
	Timestamp  int64  `json:"timestamp"`
}
