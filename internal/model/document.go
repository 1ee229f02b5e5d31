package model

type Document struct {
	ID            int64  `json:"id"`
	UID           string `json:"uid"`
	Token         string `json:"token"`
	Name          string `json:"name"`
	ContentType   string `json:"contentType"`
	ContentKey    string `json:"-"`
	ContentHash   string `json:"contentHash"`
	Size          string `json:"size"`
	CreatorID     int64  `json:"creatorId"`
	IsSigned      bool   `json:"isSigned"`
	SignatureData string `json:"signatureData,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}
