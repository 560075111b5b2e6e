package domain

import "time"

// Session represents one authenticated shop/app pairing. It is keyed by the
// shop's canonical hostname, which never changes once the record is created.
type Session struct {
	ShopDomain  string    `json:"shop_domain" bson:"_id"`
	AccessToken string    `json:"access_token" bson:"access_token"`
	APIVersion  string    `json:"api_version" bson:"api_version"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Validate checks the invariants a session must satisfy before it may be
// persisted. A session without a token or API version is unusable, so stores
// must refuse to write it.
func (s *Session) Validate() error {
	if s.ShopDomain == "" {
		return &ValidationError{Field: "shop_domain"}
	}
	if s.AccessToken == "" {
		return &ValidationError{Field: "access_token"}
	}
	if s.APIVersion == "" {
		return &ValidationError{Field: "api_version"}
	}
	return nil
}
