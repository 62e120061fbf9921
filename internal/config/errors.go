package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormengine is not mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("config db.gormengine must be one of mysql, postgres, sqlite")

	// ErrLegacyHostEmpty error if the legacy database is enabled without a host.
	ErrLegacyHostEmpty = errors.New("config legacy.host can not be empty when legacy db is enabled")
)
