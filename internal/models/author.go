package models

// Fallback display names used when an author cannot be resolved.
const (
	AnonymousAuthorName = "Anonymous"
	UnknownAuthorName   = "Unknown"
)

// AuthorSummary is the display-safe projection of a user attached to posts,
// comments and likes. It is never persisted.
type AuthorSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// SummaryOf projects a user record into an AuthorSummary.
func SummaryOf(u *User) AuthorSummary {
	name := u.Name
	if name == "" {
		name = AnonymousAuthorName
	}
	return AuthorSummary{ID: u.ID, Name: name, Image: u.Image}
}
