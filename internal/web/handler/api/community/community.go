// Package community serves the categories, posts and comments of the community area.
package community

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/auth"
	store "github.com/biblia-online/biblia/internal/db/controller/community"
	"github.com/biblia-online/biblia/internal/web/handler"
	"github.com/biblia-online/biblia/internal/web/navigation"
)

// Path is the route prefix of the community api.
const Path = handler.APIPath + "/community"

var errNilDeps = errors.New("community: app or dependencies are nil")

// Service is the community handler service.
type Service struct {
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the community handler.
var Handler = Service{} //nolint:gochecknoglobals

type quotedVerse struct {
	Text      string `json:"text" validate:"required"`
	Reference string `json:"reference" validate:"required"`
	Version   string `json:"version"`
}

type postRequest struct {
	Category string       `json:"category" validate:"required,max=100"`
	Title    string       `json:"title" validate:"required,max=255"`
	Content  string       `json:"content"`
	Verse    *quotedVerse `json:"verse"`
}

type commentRequest struct {
	Content string       `json:"content"`
	Verse   *quotedVerse `json:"verse"`
}

// Init registers the community routes. Reading is public, writing needs community.post.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil || deps.Auth == nil {
		return errNilDeps
	}

	s.db = deps.DB
	s.auth = deps.Auth

	canPost := auth.RequirePermission(s.auth, auth.PermCommunityPost)

	r := app.Group(Path)
	r.Get("/categories", s.Categories)
	r.Get("/posts", s.Posts)
	r.Get("/posts/search", s.Search)
	r.Get("/posts/:id", s.Post)
	r.Post("/posts", canPost, s.CreatePost)
	r.Delete("/posts/:id", canPost, s.DeletePost)
	r.Post("/posts/:id/like", canPost, s.LikePost)
	r.Get("/posts/:id/comments", s.Comments)
	r.Post("/posts/:id/comments", canPost, s.CreateComment)
	r.Delete("/comments/:id", canPost, s.DeleteComment)
	r.Post("/comments/:id/like", canPost, s.LikeComment)

	return nil
}

// Categories lists the categories with their post counts.
func (s *Service) Categories(c *fiber.Ctx) error {
	out, err := store.Categories(s.db)
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

// Posts lists ?page= of the posts in ?category=, newest first.
func (s *Service) Posts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("page_size", store.DefaultPageSize)

	posts, total, err := store.Posts(s.db, c.Query("category"), page, size)
	if err != nil {
		return storeError(c, err)
	}

	if size <= 0 {
		size = store.DefaultPageSize
	}

	return c.JSON(fiber.Map{"data": posts, "pagination": navigation.NewPage(page, size, total)})
}

// Search matches post titles against ?q=.
func (s *Service) Search(c *fiber.Ctx) error {
	out, err := store.SearchPosts(s.db, c.Query("q"))
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

// Post returns one post.
func (s *Service) Post(c *fiber.Ctx) error {
	p, err := store.Post(s.db, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, p)
}

// CreatePost publishes a post, optionally quoting a verse above the content.
func (s *Service) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	p, err := store.CreatePost(s.db, handler.UserID(c), req.Category, req.Title, withQuote(req.Content, req.Verse))
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": p})
}

// DeletePost removes a post of the user, or any post for moderators.
func (s *Service) DeletePost(c *fiber.Ctx) error {
	err := store.DeletePost(s.db, c.Params("id"), handler.UserID(c), s.moderator(c))
	if err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost adds a like and answers the new count.
func (s *Service) LikePost(c *fiber.Ctx) error {
	likes, err := store.LikePost(s.db, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{"likes_count": likes})
}

// Comments lists the comments of a post, oldest first.
func (s *Service) Comments(c *fiber.Ctx) error {
	out, err := store.Comments(s.db, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	return handler.DataJSON(c, out)
}

// CreateComment replies to a post.
func (s *Service) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if ok, err := handler.Bind(c, &req); !ok {
		return err
	}

	comment, err := store.CreateComment(s.db, c.Params("id"), handler.UserID(c), withQuote(req.Content, req.Verse))
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": comment})
}

// DeleteComment removes a comment of the user, or any comment for moderators.
func (s *Service) DeleteComment(c *fiber.Ctx) error {
	err := store.DeleteComment(s.db, c.Params("id"), handler.UserID(c), s.moderator(c))
	if err != nil {
		return storeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikeComment adds a like and answers the new count.
func (s *Service) LikeComment(c *fiber.Ctx) error {
	likes, err := store.LikeComment(s.db, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{"likes_count": likes})
}

func (s *Service) moderator(c *fiber.Ctx) bool {
	return auth.HasPermissionInContext(c, s.auth, auth.PermCommunityModerate)
}

func withQuote(content string, v *quotedVerse) string {
	if v == nil {
		return content
	}

	quote := store.QuoteVerse(v.Text, v.Reference, v.Version)
	if content == "" {
		return quote
	}

	return quote + "\n\n" + content
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrEmptyContent), errors.Is(err, store.ErrUnknownCategory):
		return handler.ErrorJSON(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, store.ErrForbidden):
		return handler.ErrorJSON(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		return handler.ErrorJSON(c, fiber.StatusNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("community operation failed")

		return handler.ErrorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", nil)
	}
}
