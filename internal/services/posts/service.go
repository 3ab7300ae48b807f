package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/thereadylab/readylab-api/internal/models"
)

// Service errors
var (
	ErrNotCommunityMember = errors.New("user is not a member of the community")
	ErrNotAuthor          = errors.New("user is not the author")
	ErrAlreadyLiked       = errors.New("post already liked")
	ErrNotLiked           = errors.New("post not liked")
)

type Service struct {
	repository PostRepository
	membership MembershipChecker
}

func NewService(repository PostRepository, membership MembershipChecker) PostService {
	return &Service{repository: repository, membership: membership}
}

func (s *Service) requireMembership(ctx context.Context, communityID, userID uint) error {
	if _, err := s.membership.GetMembership(ctx, communityID, userID); err != nil {
		return ErrNotCommunityMember
	}
	return nil
}

func (s *Service) CreatePost(ctx context.Context, communityID, authorID uint, title, body string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("post title is required")
	}
	if err := s.requireMembership(ctx, communityID, authorID); err != nil {
		return nil, err
	}

	post := &models.Post{
		CommunityID: communityID,
		AuthorID:    authorID,
		Title:       title,
		Body:        body,
	}
	if err := s.repository.Create(ctx, post); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] Post created: id=%d community=%d author=%d", post.ID, communityID, authorID)
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.repository.GetByID(ctx, id)
}

// UpdatePost allows only the author to edit the post.
func (s *Service) UpdatePost(ctx context.Context, id, userID uint, update PostUpdate) (*models.Post, error) {
	post, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, fmt.Errorf("post title is required")
		}
		post.Title = title
	}
	if update.Body != nil {
		post.Body = *update.Body
	}

	if err := s.repository.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost allows the author or a moderator to remove the post.
func (s *Service) DeletePost(ctx context.Context, id, userID uint, isModerator bool) error {
	post, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && !isModerator {
		return ErrNotAuthor
	}
	return s.repository.Delete(ctx, id)
}

func (s *Service) ListPosts(ctx context.Context, communityID uint, page, limit int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repository.ListByCommunity(ctx, communityID, page, limit)
}

func (s *Service) SetPinned(ctx context.Context, id uint, pinned bool) (*models.Post, error) {
	post, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Pinned == pinned {
		return post, nil
	}
	post.Pinned = pinned
	if err := s.repository.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) AddComment(ctx context.Context, postID, authorID uint, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}

	post, err := s.repository.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, post.CommunityID, authorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, commentID, userID uint, isModerator bool) error {
	comment, err := s.repository.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID && !isModerator {
		return ErrNotAuthor
	}
	return s.repository.DeleteComment(ctx, commentID)
}

func (s *Service) ListComments(ctx context.Context, postID uint, page, limit int) ([]models.Comment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if _, err := s.repository.GetByID(ctx, postID); err != nil {
		return nil, 0, err
	}
	return s.repository.ListComments(ctx, postID, page, limit)
}

// Like records a like once per user and returns the refreshed post.
func (s *Service) Like(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.repository.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, post.CommunityID, userID); err != nil {
		return nil, err
	}

	if _, err := s.repository.GetLike(ctx, postID, userID); err == nil {
		return nil, ErrAlreadyLiked
	} else if !errors.Is(err, ErrLikeNotFound) {
		return nil, err
	}

	if err := s.repository.AddLike(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.repository.GetByID(ctx, postID)
}

func (s *Service) Unlike(ctx context.Context, postID, userID uint) (*models.Post, error) {
	if err := s.repository.RemoveLike(ctx, postID, userID); err != nil {
		if errors.Is(err, ErrLikeNotFound) {
			return nil, ErrNotLiked
		}
		return nil, err
	}
	return s.repository.GetByID(ctx, postID)
}
