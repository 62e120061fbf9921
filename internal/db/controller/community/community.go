// Package community stores categories, posts, comments and likes of the community area.
package community

import (
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

const (
	// DefaultPageSize of Posts.
	DefaultPageSize = 20
	// SearchLimit caps title searches.
	SearchLimit = 10
)

var (
	// ErrNotFound is returned when a post or comment does not exist.
	ErrNotFound = errors.New("community entry not found")
	// ErrForbidden is returned when deleting content of someone else without moderation rights.
	ErrForbidden = errors.New("not allowed to change this entry")
	// ErrUnknownCategory is returned when posting to a category that does not exist.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyContent is returned when a title or content is blank after sanitising.
	ErrEmptyContent = errors.New("title and content cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

var (
	contentPolicy = bluemonday.UGCPolicy()    //nolint:gochecknoglobals
	titlePolicy   = bluemonday.StrictPolicy() //nolint:gochecknoglobals
)

// Category with its number of posts.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PostCount   int64  `json:"post_count"`
}

// Sanitize strips markup outside the user generated content policy.
func Sanitize(content string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(content))
}

// QuoteVerse formats a verse as a markdown quote for a post or comment.
func QuoteVerse(text, reference, version string) string {
	return fmt.Sprintf("> %s\n> \n> %s (%s)", text, reference, version)
}

// EnsureCategories creates the missing categories.
func EnsureCategories(db *gorm.DB, categories []models.CommunityCategory) error {
	if db == nil {
		return ErrDBNil
	}

	for _, c := range categories {
		row := models.CommunityCategory{}
		if err := db.Where(models.CommunityCategory{Name: c.Name}).Attrs(c).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

// Categories lists the categories by name with their post counts.
func Categories(db *gorm.DB) ([]Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []Category{}
	err := db.Model(&models.CommunityCategory{}).
		Select("community_categories.id, community_categories.name, community_categories.description, COUNT(community_posts.id) AS post_count").
		Joins("LEFT JOIN community_posts ON community_posts.category = community_categories.name").
		Group("community_categories.id, community_categories.name, community_categories.description").
		Order("community_categories.name").
		Scan(&out).Error

	return out, err
}

// CreatePost publishes a post in an existing category.
func CreatePost(db *gorm.DB, userID uint64, category, title, content string) (*models.CommunityPost, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	title = strings.TrimSpace(titlePolicy.Sanitize(title))
	content = Sanitize(content)

	if title == "" || content == "" {
		return nil, ErrEmptyContent
	}

	var count int64
	if err := db.Model(&models.CommunityCategory{}).Where("name = ?", category).Count(&count).Error; err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	p := models.CommunityPost{UserID: userID, Category: category, Title: title, Content: content}
	if err := db.Create(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

// Posts lists a page (1 based) of posts, newest first. An empty category lists every post.
func Posts(db *gorm.DB, category string, page, pageSize int) ([]models.CommunityPost, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := db.Model(&models.CommunityPost{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []models.CommunityPost{}

	err := q.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// Post returns one post.
func Post(db *gorm.DB, id string) (*models.CommunityPost, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.CommunityPost

	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}

	return &p, nil
}

// DeletePost removes a post with its comments. Only the author or a moderator may do so.
func DeletePost(db *gorm.DB, id string, userID uint64, moderator bool) error {
	p, err := Post(db, id)
	if err != nil {
		return err
	}

	if p.UserID != userID && !moderator {
		return ErrForbidden
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.CommunityComment{}).Error; err != nil {
			return err
		}

		return tx.Delete(p).Error
	})
}

// SearchPosts matches titles case-insensitively, newest first.
func SearchPosts(db *gorm.DB, query string) ([]models.CommunityPost, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.CommunityPost{}
	err := db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(query))+"%").
		Order("created_at DESC").
		Limit(SearchLimit).
		Find(&out).Error

	return out, err
}

// Comments lists the comments of a post, oldest first.
func Comments(db *gorm.DB, postID string) ([]models.CommunityComment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.CommunityComment{}
	err := db.Where("post_id = ?", postID).Order("created_at").Find(&out).Error

	return out, err
}

// CreateComment adds a comment and bumps the comment counter of the post.
func CreateComment(db *gorm.DB, postID string, userID uint64, content string) (*models.CommunityComment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	content = Sanitize(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c := models.CommunityComment{PostID: postID, UserID: userID, Content: content}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CommunityPost{}).Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// DeleteComment removes a comment of the author (or any comment for moderators).
func DeleteComment(db *gorm.DB, id string, userID uint64, moderator bool) error {
	if db == nil {
		return ErrDBNil
	}

	var c models.CommunityComment

	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return notFound(err)
	}

	if c.UserID != userID && !moderator {
		return ErrForbidden
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}

		return tx.Model(&models.CommunityPost{}).Where("id = ? AND comments_count > 0", c.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
}

// LikePost increments the likes of a post and returns the new count.
func LikePost(db *gorm.DB, id string) (int, error) {
	return like(db, &models.CommunityPost{}, id)
}

// LikeComment increments the likes of a comment and returns the new count.
func LikeComment(db *gorm.DB, id string) (int, error) {
	return like(db, &models.CommunityComment{}, id)
}

func like(db *gorm.DB, model any, id string) (int, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var likes []int

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model).Where("id = ?", id).UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Model(model).Where("id = ?", id).Pluck("likes_count", &likes).Error
	})

	if err != nil || len(likes) == 0 {
		return 0, err
	}

	return likes[0], nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
