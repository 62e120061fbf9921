// Package fiber writes the access log of the web server with zerolog.
package fiber

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/biblia-online/biblia/internal/logger"
	"github.com/biblia-online/biblia/internal/metrics"
)

// Config of the access log middleware.
type Config struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Config selects the console and file outputs.
	Config logger.Log

	// Output receives the access lines in addition to the configured ones.
	Output io.Writer

	// CacheControlError is sent with responses of failed handler chains.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// UserLocal names the ctx.Locals key holding the signed-in user id as string.
	// Empty disables the user field.
	UserLocal string
}

const defaultCacheControlError = "max-age=0"

// New creates the access log middleware. It also records the request duration histogram.
func New(cfg Config) fiber.Handler {
	if cfg.CacheControlError == "" {
		cfg.CacheControlError = defaultCacheControlError
	}

	access := zerolog.New(zerolog.MultiLevelWriter(writers(&cfg)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
			}

			c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		c.Response().Header.Set("Server-Timing", fmt.Sprintf("app;dur=%.3f", float64(elapsed.Microseconds())/1000))

		metrics.RequestDuration.
			WithLabelValues(c.Route().Path, c.Method(), strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		if cfg.Config.DisableCheckAlive && cfg.CheckAliveURI != "" && c.Path() == cfg.CheckAliveURI {
			return nil
		}

		// the raw path, fasthttp would normalize //a/b to /a/b
		uri := string(c.Request().URI().PathOriginal())
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			uri += "?" + string(q)
		}

		e := access.Log().
			Str("IP", c.IP()).
			Int("status", status).
			Dur("took", elapsed).
			Str("URI", uri).
			Str("route", c.Route().Path).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, c.Get(fiber.HeaderReferer))

		if cfg.UserLocal != "" {
			if userID, ok := c.Locals(cfg.UserLocal).(string); ok && userID != "" {
				e.Str("user", userID)
			}
		}

		if chainErr != nil {
			e.Err(chainErr)
		}

		e.Send()

		return nil
	}
}

func writers(cfg *Config) []io.Writer {
	var out []io.Writer

	if cfg.Output != nil {
		out = append(out, cfg.Output)
	}

	if cfg.Config.File.Enabled {
		if w := newRollingAccessFile(&cfg.Config); w != nil {
			out = append(out, w)
		}
	}

	if !cfg.Config.Console.Enabled || !cfg.Config.EnableAccessLogToConsole {
		return out
	}

	if cfg.Config.Console.UseConsoleWriter {
		return append(out, zerolog.ConsoleWriter{
			Out:          os.Stdout,
			TimeFormat:   time.RFC3339,
			PartsExclude: []string{zerolog.LevelFieldName},
		})
	}

	return append(out, os.Stdout)
}

// newRollingAccessFile rotates the access log with lumberjack.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
		MaxSize:    cfg.File.AccessMaxSize,
		MaxAge:     cfg.File.AccessMaxAge,
		MaxBackups: cfg.File.AccessMaxBackups,
	}
}
