package models

// All returns every model of the primary database in migration order.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
		&Setting{},
		&BibleVersion{},
		&BibleBook{},
		&BibleChapter{},
		&BibleVerse{},
		&FavoriteVerse{},
		&HighlightedVerse{},
		&VerseSearch{},
		&CommunityCategory{},
		&CommunityPost{},
		&CommunityComment{},
		&Subscription{},
	}
}
