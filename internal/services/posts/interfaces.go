package posts

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// PostUpdate carries optional field changes for a post.
type PostUpdate struct {
	Title *string
	Body  *string
}

// PostRepository defines data access for posts, comments and likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListByCommunity(ctx context.Context, communityID uint, page, limit int) ([]models.Post, int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, int64, error)

	GetLike(ctx context.Context, postID, userID uint) (*models.PostLike, error)
	AddLike(ctx context.Context, postID, userID uint) error
	RemoveLike(ctx context.Context, postID, userID uint) error
}

// MembershipChecker reports whether a user belongs to a community.
type MembershipChecker interface {
	GetMembership(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error)
}

// PostService defines business logic for community posts.
type PostService interface {
	CreatePost(ctx context.Context, communityID, authorID uint, title, body string) (*models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, id, userID uint, update PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id, userID uint, isModerator bool) error
	ListPosts(ctx context.Context, communityID uint, page, limit int) ([]models.Post, int64, error)
	SetPinned(ctx context.Context, id uint, pinned bool) (*models.Post, error)

	AddComment(ctx context.Context, postID, authorID uint, body string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID uint, isModerator bool) error
	ListComments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, int64, error)

	Like(ctx context.Context, postID, userID uint) (*models.Post, error)
	Unlike(ctx context.Context, postID, userID uint) (*models.Post, error)
}
