package middleware

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// RequestIDHeaderKey is the header echoing the request id.
const RequestIDHeaderKey = "X-Request-ID"

// GetLogger returns the application logger: JSON at info level, or a
// console writer at trace level in development.
func GetLogger(config configpkg.Config) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var (
		output   io.Writer = os.Stderr
		logLevel           = zerolog.InfoLevel // default to INFO
	)

	log := zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Logger()

	if config.Environement == "development" {
		log = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(zerolog.TraceLevel).
			With().
			Caller().
			Logger()
	}

	return log
}

// RequestLogger logs a gin HTTP request in JSON format and puts the request
// scoped logger into the request context.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.Request.Header.Get(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(RequestIDHeaderKey, requestID)
		}

		c.Writer.Header().Set(RequestIDHeaderKey, requestID)

		l := logger.With().Str("request_id", requestID).Logger()

		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		defer func() {
			if panicVal := recover(); panicVal != nil {
				l.Error().Msgf("panic message: %v", panicVal)
				c.AbortWithStatus(http.StatusInternalServerError)
			}

			latency := time.Since(start)

			var logEvent *zerolog.Event
			if c.Writer.Status() >= 500 {
				logEvent = l.Error()
			} else {
				logEvent = l.Info()
			}

			logEvent.
				Str("client_id", c.ClientIP()).
				Str("method", c.Request.Method).
				Int("status_code", c.Writer.Status()).
				Str("path", c.Request.URL.Path).
				Str("latency", latency.String()).
				Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
		}()

		// Process request
		c.Next()
	}
}
