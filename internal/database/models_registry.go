package database

import "inkpress/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// post_tags is created through the Post.Tags join table set up in Migrate.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	}
}
