// internal/adapters/out/firestore/news_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	newsdom "talentagency/internal/domain/news"
)

// ============================================================
// posts: news/{autoId}
// ============================================================

type NewsPostRepositoryFS struct {
	Client *firestore.Client
}

func NewNewsPostRepositoryFS(client *firestore.Client) *NewsPostRepositoryFS {
	return &NewsPostRepositoryFS{Client: client}
}

func (r *NewsPostRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("news-posts")
}

type newsPostDoc struct {
	Title         string    `firestore:"title"`
	Slug          string    `firestore:"slug"`
	Excerpt       string    `firestore:"excerpt,omitempty"`
	ContentHTML   string    `firestore:"contentHtml"`
	CoverImageURL string    `firestore:"coverImageUrl,omitempty"`
	Author        string    `firestore:"author"`
	Tags          []string  `firestore:"tags"`
	Published     bool      `firestore:"published"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func (r *NewsPostRepositoryFS) Create(ctx context.Context, p newsdom.Post) (newsdom.Post, error) {
	if r.Client == nil {
		return newsdom.Post{}, errNilClient
	}
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, postToDoc(p)); err != nil {
		return newsdom.Post{}, err
	}
	p.ID = ref.ID
	return p, nil
}

func (r *NewsPostRepositoryFS) Save(ctx context.Context, p newsdom.Post) (newsdom.Post, error) {
	if r.Client == nil {
		return newsdom.Post{}, errNilClient
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return newsdom.Post{}, newsdom.ErrInvalidPostID
	}
	if _, err := r.col().Doc(id).Set(ctx, postToDoc(p)); err != nil {
		return newsdom.Post{}, err
	}
	return p, nil
}

func (r *NewsPostRepositoryFS) GetByID(ctx context.Context, id string) (newsdom.Post, error) {
	if r.Client == nil {
		return newsdom.Post{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return newsdom.Post{}, newsdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return newsdom.Post{}, newsdom.ErrNotFound
		}
		return newsdom.Post{}, err
	}
	return decodePost(snap)
}

func (r *NewsPostRepositoryFS) GetBySlug(ctx context.Context, slug string) (newsdom.Post, error) {
	if r.Client == nil {
		return newsdom.Post{}, errNilClient
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return newsdom.Post{}, newsdom.ErrNotFound
	}
	docs, err := r.col().Where("slug", "==", slug).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return newsdom.Post{}, err
	}
	if len(docs) == 0 {
		return newsdom.Post{}, newsdom.ErrNotFound
	}
	return decodePost(docs[0])
}

func (r *NewsPostRepositoryFS) List(ctx context.Context, publishedOnly bool) ([]newsdom.Post, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.col().OrderBy("createdAt", firestore.Desc)
	if publishedOnly {
		q = r.col().Where("published", "==", true).OrderBy("createdAt", firestore.Desc)
	}
	it := q.Documents(ctx)
	defer it.Stop()

	out := []newsdom.Post{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *NewsPostRepositoryFS) Delete(ctx context.Context, id string) error {
	if r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return newsdom.ErrInvalidPostID
	}
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return newsdom.ErrNotFound
	}
	return err
}

func postToDoc(p newsdom.Post) newsPostDoc {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return newsPostDoc{
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		ContentHTML:   p.ContentHTML,
		CoverImageURL: p.CoverImageURL,
		Author:        p.Author,
		Tags:          tags,
		Published:     p.Published,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func decodePost(snap *firestore.DocumentSnapshot) (newsdom.Post, error) {
	var d newsPostDoc
	if err := snap.DataTo(&d); err != nil {
		return newsdom.Post{}, err
	}
	return newsdom.Post{
		ID:            snap.Ref.ID,
		Title:         d.Title,
		Slug:          d.Slug,
		Excerpt:       d.Excerpt,
		ContentHTML:   d.ContentHTML,
		CoverImageURL: d.CoverImageURL,
		Author:        d.Author,
		Tags:          d.Tags,
		Published:     d.Published,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// ============================================================
// comments: news-comments/{autoId}
// ============================================================

type NewsCommentRepositoryFS struct {
	Client *firestore.Client
}

func NewNewsCommentRepositoryFS(client *firestore.Client) *NewsCommentRepositoryFS {
	return &NewsCommentRepositoryFS{Client: client}
}

func (r *NewsCommentRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("news-comments")
}

type newsCommentDoc struct {
	PostID     string    `firestore:"postId"`
	UserID     string    `firestore:"userId"`
	AuthorName string    `firestore:"authorName"`
	Body       string    `firestore:"body"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

func (r *NewsCommentRepositoryFS) Create(ctx context.Context, c newsdom.Comment) (newsdom.Comment, error) {
	if r.Client == nil {
		return newsdom.Comment{}, errNilClient
	}
	ref := r.col().NewDoc()
	doc := newsCommentDoc{
		PostID:     c.PostID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt.UTC(),
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return newsdom.Comment{}, err
	}
	c.ID = ref.ID
	return c, nil
}

func (r *NewsCommentRepositoryFS) GetByID(ctx context.Context, id string) (newsdom.Comment, error) {
	if r.Client == nil {
		return newsdom.Comment{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return newsdom.Comment{}, newsdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return newsdom.Comment{}, newsdom.ErrNotFound
		}
		return newsdom.Comment{}, err
	}
	return decodeComment(snap)
}

func (r *NewsCommentRepositoryFS) ListByPost(ctx context.Context, postID string) ([]newsdom.Comment, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	it := r.col().
		Where("postId", "==", strings.TrimSpace(postID)).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer it.Stop()

	out := []newsdom.Comment{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		c, err := decodeComment(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *NewsCommentRepositoryFS) Delete(ctx context.Context, id string) error {
	if r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(strings.TrimSpace(id)).Delete(ctx)
	return err
}

func (r *NewsCommentRepositoryFS) DeleteByPost(ctx context.Context, postID string) error {
	if r.Client == nil {
		return errNilClient
	}
	_, err := deleteAll(ctx, r.Client, r.col().Where("postId", "==", strings.TrimSpace(postID)))
	return err
}

func decodeComment(snap *firestore.DocumentSnapshot) (newsdom.Comment, error) {
	var d newsCommentDoc
	if err := snap.DataTo(&d); err != nil {
		return newsdom.Comment{}, err
	}
	return newsdom.Comment{
		ID:         snap.Ref.ID,
		PostID:     d.PostID,
		UserID:     d.UserID,
		AuthorName: d.AuthorName,
		Body:       d.Body,
		CreatedAt:  d.CreatedAt.UTC(),
	}, nil
}
