package server

import (
	"devconnector/internal/notifications"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/comment/:id
// @Summary Comment on post
// @Description The new comment is placed first.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.CommentInput true "Comment"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id} [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}

	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = mustUserID(c)

	post, comment, err := s.postService.AddComment(c.UserContext(), postID, req)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, notifications.PostEvent{
		Type:      notifications.EventCommentCreated,
		PostID:    post.ID,
		ActorID:   req.UserID,
		OwnerID:   post.UserID,
		CommentID: comment.ID,
		Likes:     len(post.Likes),
		Comments:  len(post.Comments),
	})
	return c.JSON(post)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Remove comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}
	commentID := c.Params("comment_id")
	userID := mustUserID(c)

	post, err := s.postService.RemoveComment(c.UserContext(), postID, commentID, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, notifications.PostEvent{
		Type:      notifications.EventCommentDeleted,
		PostID:    post.ID,
		ActorID:   userID,
		OwnerID:   post.UserID,
		CommentID: commentID,
		Likes:     len(post.Likes),
		Comments:  len(post.Comments),
	})
	return c.JSON(post)
}
