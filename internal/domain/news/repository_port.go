// internal/domain/news/repository_port.go
package news

import "context"

type PostRepository interface {
	Create(ctx context.Context, p Post) (Post, error)
	Save(ctx context.Context, p Post) (Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	// GetBySlug returns ErrNotFound when no post has the slug.
	GetBySlug(ctx context.Context, slug string) (Post, error)
	// List returns newest first; publishedOnly hides drafts.
	List(ctx context.Context, publishedOnly bool) ([]Post, error)
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c Comment) (Comment, error)
	GetByID(ctx context.Context, id string) (Comment, error)
	// ListByPost returns oldest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) error
}
