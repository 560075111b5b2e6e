package entity

import (
	"time"

	"shopify-session-gate/internal/domain"
)

// SessionDoc is the persisted shape of a session, shared by the Mongo
// (bson-mapped) and Redis (json-mapped) stores. The shop domain is the
// document key.
type SessionDoc struct {
	ShopDomain  string    `bson:"_id" json:"shop_domain"`
	AccessToken string    `bson:"access_token" json:"access_token"`
	APIVersion  string    `bson:"api_version" json:"api_version"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ToDomain converts the stored document to a domain entity
func (d *SessionDoc) ToDomain() *domain.Session {
	return &domain.Session{
		ShopDomain:  d.ShopDomain,
		AccessToken: d.AccessToken,
		APIVersion:  d.APIVersion,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// SessionDocFromDomain converts a domain entity to its stored shape
func SessionDocFromDomain(session *domain.Session) *SessionDoc {
	return &SessionDoc{
		ShopDomain:  session.ShopDomain,
		AccessToken: session.AccessToken,
		APIVersion:  session.APIVersion,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}
