package server

import (
	"devconnector/internal/notifications"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostsPing handles GET /api/posts/test
func (s *Server) PostsPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Connected to posts"})
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description All posts, newest first.
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = mustUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, notifications.PostEvent{
		Type:    notifications.EventPostCreated,
		PostID:  post.ID,
		ActorID: req.UserID,
		OwnerID: post.UserID,
	})
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Only the owner may delete a post.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}
	userID := mustUserID(c)

	post, err := s.postService.DeletePost(c.UserContext(), postID, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, notifications.PostEvent{
		Type:    notifications.EventPostDeleted,
		PostID:  post.ID,
		ActorID: userID,
		OwnerID: post.UserID,
	})
	return c.JSON(fiber.Map{"success": true})
}

// LikePost handles POST /api/posts/like/:id
// @Summary Like post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like/{id} [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}
	userID := mustUserID(c)

	post, err := s.postService.LikePost(c.UserContext(), postID, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, reactionEvent(post, userID, true))
	return c.JSON(post)
}

// UnlikePost handles POST /api/posts/unlike/:id
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return nil
	}
	userID := mustUserID(c)

	post, err := s.postService.UnlikePost(c.UserContext(), postID, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishPostEvent(c, reactionEvent(post, userID, false))
	return c.JSON(post)
}
