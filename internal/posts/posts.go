package posts

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnector/internal/auth"
	"devconnector/internal/users"
)

var (
	// ErrPostNotFound is returned for unknown or malformed post ids.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment id is not on the post.
	ErrCommentNotFound = errors.New("comment does not exist")
	// ErrAlreadyLiked is returned when the user already likes the post.
	ErrAlreadyLiked = errors.New("post already liked")
	// ErrNotLiked is returned when unliking a post the user does not like.
	ErrNotLiked = errors.New("post has not yet been liked")
	// ErrNotAuthorized is returned when the user does not own what they try to delete.
	ErrNotAuthorized = errors.New("user not authorized")
)

// Post is a status update. Name and Avatar are copied from the author when the post
// is written and are not kept in sync afterwards.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	UserID    string    `gorm:"index;not null;size:36" json:"user"`
	Text      string    `gorm:"not null" json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `gorm:"constraint:OnDelete:CASCADE" json:"likes"`
	Comments  []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt time.Time `gorm:"index" json:"date"`
}

// Like records that a user likes a post. The unique index keeps it to one per user.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	PostID    string    `gorm:"not null;size:36;uniqueIndex:idx_likes_post_user" json:"-"`
	UserID    string    `gorm:"not null;size:36;uniqueIndex:idx_likes_post_user" json:"user"`
	CreatedAt time.Time `json:"-"`
}

// Comment is a reply on a post, carrying a snapshot of its author like Post does.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	PostID    string    `gorm:"index;not null;size:36" json:"-"`
	UserID    string    `gorm:"not null;size:36" json:"user"`
	Text      string    `gorm:"not null" json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// OwnerID implements auth.Owned.
func (p *Post) OwnerID() string {
	return p.UserID
}

// OwnerID implements auth.Owned.
func (c *Comment) OwnerID() string {
	return c.UserID
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Likes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		})
}

func (p *Post) normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// Create writes a new post by author.
func Create(db *gorm.DB, author *users.User, text string) (*Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	post := Post{
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}

	logger := slog.Default()
	if err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&post).Error
	}); err != nil {
		return nil, err
	}

	post.normalize()
	return &post, nil
}

// List returns all posts, newest first.
func List(db *gorm.DB) ([]Post, error) {
	var posts []Post
	if err := withDetails(db).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].normalize()
	}
	return posts, nil
}

// FindByID retrieves a post with its likes and comments.
func FindByID(db *gorm.DB, id string) (*Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	var post Post
	if err := withDetails(db).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.normalize()
	return &post, nil
}

// Delete removes the post id if userID wrote it.
func Delete(db *gorm.DB, id, userID string) error {
	post, err := FindByID(db, id)
	if err != nil {
		return err
	}
	if !auth.CanMutate(post, userID) {
		return ErrNotAuthorized
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", post.ID).Delete(&Post{}).Error
	})
}

// exists returns ErrPostNotFound unless a post with id is stored.
func exists(db *gorm.DB, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrPostNotFound
	}
	var count int64
	if err := db.Model(&Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

// LikePost adds userID to the likes of post id. The insert is ignored by the unique index
// when the like already exists, which is reported as ErrAlreadyLiked.
func LikePost(db *gorm.DB, id, userID string) ([]Like, error) {
	if err := exists(db, id); err != nil {
		return nil, err
	}

	var inserted int64
	logger := slog.Default()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Like{PostID: id, UserID: userID})
		inserted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		return nil, ErrAlreadyLiked
	}

	return likesOf(db, id)
}

// UnlikePost removes the like of userID from post id, or returns ErrNotLiked.
func UnlikePost(db *gorm.DB, id, userID string) ([]Like, error) {
	if err := exists(db, id); err != nil {
		return nil, err
	}

	var removed int64
	logger := slog.Default()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", id, userID).Delete(&Like{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, ErrNotLiked
	}

	return likesOf(db, id)
}

func likesOf(db *gorm.DB, postID string) ([]Like, error) {
	likes := []Like{}
	err := db.Where("post_id = ?", postID).Order("created_at DESC").Find(&likes).Error
	return likes, err
}

func commentsOf(db *gorm.DB, postID string) ([]Comment, error) {
	comments := []Comment{}
	err := db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error
	return comments, err
}

// AddComment adds a comment by author to post id and returns all comments, newest first.
func AddComment(db *gorm.DB, id string, author *users.User, text string) ([]Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}
	if err := exists(db, id); err != nil {
		return nil, err
	}

	comment := Comment{
		PostID: id,
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}

	logger := slog.Default()
	if err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&comment).Error
	}); err != nil {
		return nil, err
	}

	return commentsOf(db, id)
}

// DeleteComment removes commentID from post id if userID wrote it.
func DeleteComment(db *gorm.DB, id, commentID, userID string) ([]Comment, error) {
	if err := exists(db, id); err != nil {
		return nil, err
	}

	var comment Comment
	if err := db.Where("id = ? AND post_id = ?", commentID, id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if !auth.CanMutate(&comment, userID) {
		return nil, ErrNotAuthorized
	}

	logger := slog.Default()
	if err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", comment.ID).Delete(&Comment{}).Error
	}); err != nil {
		return nil, err
	}

	return commentsOf(db, id)
}
