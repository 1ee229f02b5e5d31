package model

const (
	SharePermissionRead  = "read"
	SharePermissionWrite = "write"
)

type DocumentShare struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"documentId"`
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
	CreatedAt  int64  `json:"createdAt"`
}
