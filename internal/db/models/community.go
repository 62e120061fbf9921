package models

// CommunityCategory groups posts. Seeded at startup.
type CommunityCategory struct {
	UUIDModel
	Name        string `gorm:"unique;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName specifies the database table name for the CommunityCategory model.
func (CommunityCategory) TableName() string {
	return "community_categories"
}

// CommunityPost is a post in a category. Category holds the category name.
type CommunityPost struct {
	UUIDModel
	UserID        uint64 `gorm:"index;not null" json:"user_id"`
	User          User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category      string `gorm:"index;size:100;not null" json:"category"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Content       string `gorm:"type:text;not null" json:"content"`
	LikesCount    int    `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int    `gorm:"not null;default:0" json:"comments_count"`
}

// TableName specifies the database table name for the CommunityPost model.
func (CommunityPost) TableName() string {
	return "community_posts"
}

// CommunityComment is a reply to a post.
type CommunityComment struct {
	UUIDModel
	PostID     string        `gorm:"index;size:36;not null" json:"post_id"`
	Post       CommunityPost `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uint64        `gorm:"index;not null" json:"user_id"`
	User       User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content    string        `gorm:"type:text;not null" json:"content"`
	LikesCount int           `gorm:"not null;default:0" json:"likes_count"`
}

// TableName specifies the database table name for the CommunityComment model.
func (CommunityComment) TableName() string {
	return "community_comments"
}
