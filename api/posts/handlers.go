package posts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/posts"
)

// CreatePostRequest is the payload for post creation
type CreatePostRequest struct {
	Title string `json:"title" binding:"required,min=1"`
	Body  string `json:"body" binding:"required,min=1"`
}

// UpdatePostRequest carries optional post field changes
type UpdatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// CreateCommentRequest is the payload for adding a comment
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,min=1"`
}

// callerModerates reports whether the caller moderates the post's community
func callerModerates(c *gin.Context, deps *types.Dependencies, communityID uint) bool {
	if role, ok := auth.CurrentRole(c); ok && role == models.RoleAdmin {
		return true
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return false
	}
	member, err := deps.CommunityService.GetMembership(c.Request.Context(), communityID, userID)
	return err == nil && member.Role == models.MemberRoleModerator
}

// ListByCommunity handles post listing within a community
// @Summary List posts in a community
// @Tags posts
// @Produce json
// @Param id path int true "Community ID"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/communities/{id}/posts [get]
func ListByCommunity(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		page, limit := types.ParsePagination(c)

		items, total, err := deps.PostService.ListPosts(c.Request.Context(), id, page, limit)
		if err != nil {
			types.SendInternalError(c, "Failed to list posts")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Create handles post creation by community members
// @Summary Create a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Community ID"
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} types.ErrorResponse "Not a community member"
// @Router /api/v1/communities/{id}/posts [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		var req CreatePostRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		post, err := deps.PostService.CreatePost(c.Request.Context(), id, userID, req.Title, req.Body)
		if err != nil {
			if errors.Is(err, posts.ErrNotCommunityMember) {
				types.SendForbidden(c, "Join the community to post")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, post)
	}
}

// Get handles single-post retrieval
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		post, err := deps.PostService.GetPost(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Post not found")
			return
		}
		types.SendSuccess(c, post)
	}
}

// Update handles post edits by the author
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		var req UpdatePostRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		post, err := deps.PostService.UpdatePost(c.Request.Context(), id, userID, posts.PostUpdate{
			Title: req.Title,
			Body:  req.Body,
		})
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrPostNotFound):
				types.SendNotFound(c, "Post not found")
			case errors.Is(err, posts.ErrNotAuthor):
				types.SendForbidden(c, "Only the author may edit the post")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendSuccess(c, post)
	}
}

// Delete handles post deletion by the author or a moderator
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		post, err := deps.PostService.GetPost(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Post not found")
			return
		}

		moderator := callerModerates(c, deps, post.CommunityID)
		if err := deps.PostService.DeletePost(c.Request.Context(), id, userID, moderator); err != nil {
			if errors.Is(err, posts.ErrNotAuthor) {
				types.SendForbidden(c, "Only the author or a moderator may delete the post")
				return
			}
			types.SendInternalError(c, "Failed to delete post")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// SetPinned handles pinning and unpinning by moderators
func SetPinned(deps *types.Dependencies, pinned bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		post, err := deps.PostService.GetPost(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Post not found")
			return
		}
		if !callerModerates(c, deps, post.CommunityID) {
			types.SendForbidden(c, "Only a moderator may pin posts")
			return
		}

		updated, err := deps.PostService.SetPinned(c.Request.Context(), id, pinned)
		if err != nil {
			types.SendInternalError(c, "Failed to update post")
			return
		}
		types.SendSuccess(c, updated)
	}
}

// ListComments handles comment listing on a post
func ListComments(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		page, limit := types.ParsePagination(c)

		comments, total, err := deps.PostService.ListComments(c.Request.Context(), id, page, limit)
		if err != nil {
			if errors.Is(err, posts.ErrPostNotFound) {
				types.SendNotFound(c, "Post not found")
				return
			}
			types.SendInternalError(c, "Failed to list comments")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: comments, Count: len(comments), Total: total, Page: page, Limit: limit})
	}
}

// AddComment handles commenting by community members
func AddComment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		var req CreateCommentRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		comment, err := deps.PostService.AddComment(c.Request.Context(), id, userID, req.Body)
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrPostNotFound):
				types.SendNotFound(c, "Post not found")
			case errors.Is(err, posts.ErrNotCommunityMember):
				types.SendForbidden(c, "Join the community to comment")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendCreated(c, comment)
	}
}

// DeleteComment handles comment deletion by the author or a moderator
func DeleteComment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		commentID, ok := types.ParseUintParam(c, "commentId")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		post, err := deps.PostService.GetPost(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Post not found")
			return
		}

		moderator := callerModerates(c, deps, post.CommunityID)
		if err := deps.PostService.DeleteComment(c.Request.Context(), commentID, userID, moderator); err != nil {
			switch {
			case errors.Is(err, posts.ErrCommentNotFound):
				types.SendNotFound(c, "Comment not found")
			case errors.Is(err, posts.ErrNotAuthor):
				types.SendForbidden(c, "Only the author or a moderator may delete the comment")
			default:
				types.SendInternalError(c, "Failed to delete comment")
			}
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// Like handles liking a post
// @Summary Like a post
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Already liked"
// @Router /api/v1/posts/{id}/like [post]
func Like(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		post, err := deps.PostService.Like(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrPostNotFound):
				types.SendNotFound(c, "Post not found")
			case errors.Is(err, posts.ErrNotCommunityMember):
				types.SendForbidden(c, "Join the community to like posts")
			case errors.Is(err, posts.ErrAlreadyLiked):
				types.SendConflict(c, "Post already liked")
			default:
				types.SendInternalError(c, "Failed to like post")
			}
			return
		}
		types.SendSuccess(c, post)
	}
}

// Unlike handles removing a like
func Unlike(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		post, err := deps.PostService.Unlike(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, posts.ErrPostNotFound):
				types.SendNotFound(c, "Post not found")
			case errors.Is(err, posts.ErrNotLiked):
				types.SendConflict(c, "Post not liked")
			default:
				types.SendInternalError(c, "Failed to unlike post")
			}
			return
		}
		types.SendSuccess(c, post)
	}
}
