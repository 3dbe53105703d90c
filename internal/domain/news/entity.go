// internal/domain/news/entity.go
package news

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidTitle   = errors.New("news: invalid title")
	ErrInvalidSlug    = errors.New("news: invalid slug")
	ErrInvalidPostID  = errors.New("news: invalid postId")
	ErrInvalidBody    = errors.New("news: invalid comment body")
	ErrInvalidAuthor  = errors.New("news: invalid author")
	ErrNotFound       = errors.New("news: not found")
	ErrSlugTaken      = errors.New("news: slug already in use")
	ErrCommentTooLong = errors.New("news: comment too long")
)

const MaxCommentLen = 2000

// Post is a rich-text article. ContentHTML is stored already sanitized.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt,omitempty"`
	ContentHTML   string    `json:"contentHtml"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Author        string    `json:"author"`
	Tags          []string  `json:"tags"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PostPatch is a partial update; nil means unchanged.
type PostPatch struct {
	Title         *string   `json:"title,omitempty"`
	Slug          *string   `json:"slug,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	ContentHTML   *string   `json:"contentHtml,omitempty"`
	CoverImageURL *string   `json:"coverImageUrl,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	Published     *bool     `json:"published,omitempty"`
}

func NewPost(title, slug, excerpt, contentHTML, coverImageURL, author string, tags []string, published bool, now time.Time) (Post, error) {
	p := Post{
		Title:         strings.TrimSpace(title),
		Slug:          strings.TrimSpace(slug),
		Excerpt:       strings.TrimSpace(excerpt),
		ContentHTML:   contentHTML,
		CoverImageURL: strings.TrimSpace(coverImageURL),
		Author:        strings.TrimSpace(author),
		Tags:          normalizeTags(tags),
		Published:     published,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if err := p.validate(); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (p *Post) Apply(patch PostPatch, now time.Time) error {
	next := *p
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Slug != nil {
		next.Slug = strings.TrimSpace(*patch.Slug)
	}
	if patch.Excerpt != nil {
		next.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.ContentHTML != nil {
		next.ContentHTML = *patch.ContentHTML
	}
	if patch.CoverImageURL != nil {
		next.CoverImageURL = strings.TrimSpace(*patch.CoverImageURL)
	}
	if patch.Tags != nil {
		next.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Published != nil {
		next.Published = *patch.Published
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now.UTC()
	*p = next
	return nil
}

func (p Post) validate() error {
	if p.Title == "" {
		return ErrInvalidTitle
	}
	if !slugPattern.MatchString(p.Slug) {
		return ErrInvalidSlug
	}
	if p.Author == "" {
		return ErrInvalidAuthor
	}
	return nil
}

// Comment is a reader's reply under a post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewComment(postID, userID, authorName, body string, now time.Time) (Comment, error) {
	c := Comment{
		PostID:     strings.TrimSpace(postID),
		UserID:     strings.TrimSpace(userID),
		AuthorName: strings.TrimSpace(authorName),
		Body:       strings.TrimSpace(body),
		CreatedAt:  now.UTC(),
	}
	if c.PostID == "" {
		return Comment{}, ErrInvalidPostID
	}
	if c.UserID == "" {
		return Comment{}, ErrInvalidAuthor
	}
	if c.Body == "" {
		return Comment{}, ErrInvalidBody
	}
	if len([]rune(c.Body)) > MaxCommentLen {
		return Comment{}, ErrCommentTooLong
	}
	if c.AuthorName == "" {
		c.AuthorName = "Anonymous"
	}
	return c, nil
}

// ============================================================
// helpers
// ============================================================

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s and joins alphanumeric runs with hyphens.
func Slugify(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	v = nonSlugChars.ReplaceAllString(v, "-")
	return strings.Trim(v, "-")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
