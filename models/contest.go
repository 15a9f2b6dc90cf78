package models

import "time"

// Contest is owned by its creator. Participation is tracked separately in
// user_contest; the creator is privileged even without a participation row.
type Contest struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	IsPublic      bool       `json:"is_public"`
	CreatedBy     int        `json:"created_by"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	ProfileImgKey *string    `json:"-"`
	ProfileImgURL *string    `json:"profile_img_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Creator *User `json:"creator,omitempty"`
}
