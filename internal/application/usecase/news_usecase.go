// internal/application/usecase/news_usecase.go
package usecase

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"

	authdom "talentagency/internal/domain/auth"
	newsdom "talentagency/internal/domain/news"

	"github.com/microcosm-cc/bluemonday"
)

// PostInput is the admin create payload.
type PostInput struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Slug          string   `json:"slug" validate:"omitempty,max=200"`
	Excerpt       string   `json:"excerpt" validate:"max=500"`
	ContentHTML   string   `json:"contentHtml" validate:"max=200000"`
	CoverImageURL string   `json:"coverImageUrl" validate:"omitempty,url"`
	Tags          []string `json:"tags" validate:"max=20,dive,max=40"`
	Published     bool     `json:"published"`
}

type NewsUsecase struct {
	posts    newsdom.PostRepository
	comments newsdom.CommentRepository
	clock    Clock

	richText  *bluemonday.Policy
	plainText *bluemonday.Policy
}

func NewNewsUsecase(posts newsdom.PostRepository, comments newsdom.CommentRepository, clock Clock) *NewsUsecase {
	rich := bluemonday.UGCPolicy()
	rich.AllowAttrs("class").OnElements("pre", "code", "span", "p")
	rich.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	rich.RequireNoFollowOnLinks(true)

	return &NewsUsecase{
		posts:     posts,
		comments:  comments,
		clock:     clockOrSystem(clock),
		richText:  rich,
		plainText: bluemonday.StrictPolicy(),
	}
}

// ListPublished returns published posts newest first.
func (uc *NewsUsecase) ListPublished(ctx context.Context) ([]newsdom.Post, error) {
	return uc.posts.List(ctx, true)
}

// ListAll includes drafts. Admin only.
func (uc *NewsUsecase) ListAll(ctx context.Context, caller authdom.Identity) ([]newsdom.Post, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return uc.posts.List(ctx, false)
}

// GetBySlug hides drafts from everyone but admins.
func (uc *NewsUsecase) GetBySlug(ctx context.Context, caller authdom.Identity, slug string) (newsdom.Post, error) {
	p, err := uc.posts.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return newsdom.Post{}, err
	}
	if !p.Published && !caller.IsAdmin {
		return newsdom.Post{}, newsdom.ErrNotFound
	}
	return p, nil
}

func (uc *NewsUsecase) Create(ctx context.Context, caller authdom.Identity, in PostInput) (newsdom.Post, error) {
	if err := requireAdmin(caller); err != nil {
		return newsdom.Post{}, err
	}
	if err := validateStruct(in); err != nil {
		return newsdom.Post{}, err
	}
	p, err := newsdom.NewPost(
		uc.stripTags(in.Title),
		in.Slug,
		uc.stripTags(in.Excerpt),
		uc.richText.Sanitize(in.ContentHTML),
		in.CoverImageURL,
		caller.Name(),
		in.Tags,
		in.Published,
		uc.clock.Now(),
	)
	if err != nil {
		return newsdom.Post{}, err
	}
	if err := uc.ensureSlugFree(ctx, p.Slug, ""); err != nil {
		return newsdom.Post{}, err
	}
	created, err := uc.posts.Create(ctx, p)
	if err != nil {
		return newsdom.Post{}, err
	}
	log.Printf("[news_uc] post created id=%s slug=%s published=%t", created.ID, created.Slug, created.Published)
	return created, nil
}

func (uc *NewsUsecase) Update(ctx context.Context, caller authdom.Identity, id string, patch newsdom.PostPatch) (newsdom.Post, error) {
	if err := requireAdmin(caller); err != nil {
		return newsdom.Post{}, err
	}
	p, err := uc.posts.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return newsdom.Post{}, err
	}
	if patch.ContentHTML != nil {
		clean := uc.richText.Sanitize(*patch.ContentHTML)
		patch.ContentHTML = &clean
	}
	if patch.Title != nil {
		clean := uc.stripTags(*patch.Title)
		patch.Title = &clean
	}
	if patch.Excerpt != nil {
		clean := uc.stripTags(*patch.Excerpt)
		patch.Excerpt = &clean
	}
	if err := p.Apply(patch, uc.clock.Now()); err != nil {
		return newsdom.Post{}, err
	}
	if patch.Slug != nil {
		if err := uc.ensureSlugFree(ctx, p.Slug, p.ID); err != nil {
			return newsdom.Post{}, err
		}
	}
	return uc.posts.Save(ctx, p)
}

// Delete removes the post and its comments.
func (uc *NewsUsecase) Delete(ctx context.Context, caller authdom.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	pid := strings.TrimSpace(id)
	if err := uc.comments.DeleteByPost(ctx, pid); err != nil {
		return err
	}
	return uc.posts.Delete(ctx, pid)
}

// ============================================================
// comments
// ============================================================

func (uc *NewsUsecase) ListComments(ctx context.Context, postID string) ([]newsdom.Comment, error) {
	return uc.comments.ListByPost(ctx, strings.TrimSpace(postID))
}

// AddComment stores plain text only; any markup is stripped.
func (uc *NewsUsecase) AddComment(ctx context.Context, caller authdom.Identity, postID, body string) (newsdom.Comment, error) {
	uid, err := requireUser(caller)
	if err != nil {
		return newsdom.Comment{}, err
	}
	p, err := uc.posts.GetByID(ctx, strings.TrimSpace(postID))
	if err != nil {
		return newsdom.Comment{}, err
	}
	if !p.Published && !caller.IsAdmin {
		return newsdom.Comment{}, newsdom.ErrNotFound
	}
	c, err := newsdom.NewComment(p.ID, uid, caller.Name(), uc.stripTags(body), uc.clock.Now())
	if err != nil {
		return newsdom.Comment{}, err
	}
	return uc.comments.Create(ctx, c)
}

// DeleteComment is allowed for the comment's author and for admins.
func (uc *NewsUsecase) DeleteComment(ctx context.Context, caller authdom.Identity, id string) error {
	uid, err := requireUser(caller)
	if err != nil {
		return err
	}
	c, err := uc.comments.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if c.UserID != uid && !caller.IsAdmin {
		return ErrForbidden
	}
	return uc.comments.Delete(ctx, c.ID)
}

func (uc *NewsUsecase) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := uc.posts.GetBySlug(ctx, slug)
	if errors.Is(err, newsdom.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return newsdom.ErrSlugTaken
}

// stripTags removes markup and returns plain text (entities decoded).
func (uc *NewsUsecase) stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(uc.plainText.Sanitize(s)))
}
