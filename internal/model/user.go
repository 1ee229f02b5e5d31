package model

// User records are provisioned out of band; this subsystem only reads them
// to enrich shares and resolve signer labels.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Initials    string `json:"initials"`
	Company     string `json:"company"`
}
