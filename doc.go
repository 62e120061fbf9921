// Package main provides the entry point of Bíblia Online.
// It reads etc/main.toml, opens the primary and legacy databases and serves
// the reading pages, the JSON api under /api/v1 and the public functions
// under /functions/v1 with the Fiber framework. Bible content is imported
// from the scripture api into the primary database with gorm.
package main
