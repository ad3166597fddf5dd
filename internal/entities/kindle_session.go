package entities

import "time"

// KindleSession is an imported Amazon session for one region.
// Cookies holds the sealed cookie jar; it is never serialized to clients.
type KindleSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Region string `gorm:"type:varchar(16);not null;uniqueIndex" json:"region"`

	// Cookies is base64 AES-256-GCM ciphertext bound to Region.
	Cookies string `gorm:"type:text;not null" json:"-"`

	// Salt is set when the key was derived from a passphrase.
	Salt string `gorm:"type:varchar(64)" json:"-"`

	UserAgent   string     `gorm:"type:text" json:"user_agent,omitempty"`
	CookieCount int        `json:"cookie_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

func (KindleSession) TableName() string {
	return "kindle_sessions"
}
