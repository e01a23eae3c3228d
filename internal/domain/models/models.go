package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleModerator || role == RoleAdmin
}

type User struct {
	ID           int64      `json:"-"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Bio          string     `json:"bio"`
	Role         string     `json:"role"`
	IsSuperuser  bool       `json:"-"`
	IsActive     bool       `json:"-"`
	CodeHash     []byte     `json:"-"`
	CodeIssuedAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// AnonymousUser marks a request with no resolvable authenticated identity.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == 0
}

func (u *User) IsAdmin() bool {
	return !u.IsAnonymous() && (u.Role == RoleAdmin || u.IsSuperuser)
}

func (u *User) IsModerator() bool {
	return !u.IsAnonymous() && u.Role == RoleModerator
}

type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Genre struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int32     `json:"year"`
	Description string    `json:"description"`
	// Rating is derived from the title's reviews and recomputed inside the
	// same transaction as every review write. Null until the first review.
	Rating   *int32    `json:"rating"`
	Category *Category `json:"category"`
	Genres   []Genre   `json:"genre"`
}

type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"` // username, resolved on read
	Score    int32     `json:"score"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}
