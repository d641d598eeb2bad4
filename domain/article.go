package domain

import "time"

// Article is a published journal article.
type Article struct {
	ID             string
	Slug           string
	Title          string
	Excerpt        string
	Content        string // Plain text, markup stripped
	Author         string // Display name
	AuthorUsername string
	Category       string
	Tags           []string
	Date           time.Time
	ReadTime       int // Minutes
	Likes          int
	Views          int
}

// Comment is a reader comment on an article.
type Comment struct {
	ID      string
	Author  string
	Content string
	Date    time.Time
	Status  string
}

// Footnote is a reader-suggested footnote on an article.
type Footnote struct {
	ID            string
	Author        string
	Content       string
	Type          string
	ReferenceText string
	Status        string
	Date          time.Time
}

// GlossaryTerm is an AI-extracted term and its definition.
type GlossaryTerm struct {
	Term       string
	Definition string
}

// AuthorProfile is the public profile of an author.
type AuthorProfile struct {
	Username    string
	FirstName   string
	LastName    string
	Bio         string
	Institution string
	Area        string
	Articles    int
	Stats       AuthorStats
	IsFollowing bool
}

// DisplayName returns "First Last" or the username when no name is set.
func (p AuthorProfile) DisplayName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.Username
	}
	return name
}

// User is the authenticated reader.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
