package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Context aliases echo.Context so callers can stay within httpx imports.
type Context = echo.Context

// HandlerFunc aliases echo.HandlerFunc.
type HandlerFunc = echo.HandlerFunc

// MiddlewareFunc aliases echo.MiddlewareFunc.
type MiddlewareFunc = echo.MiddlewareFunc

// Echo is a minimal wrapper exposing the underlying Echo instance when needed.
type Echo struct{ *echo.Echo }

// NewEcho creates a new Echo instance wrapped in httpx.Echo.
func NewEcho() *Echo { return &Echo{echo.New()} }

// RecoverMiddleware returns Echo's recover middleware.
func RecoverMiddleware() MiddlewareFunc { return middleware.Recover() }

// HTTPError constructs an HTTPError without importing echo in callers.
func HTTPError(code int, message any) error { return echo.NewHTTPError(code, message) }

// Validator runs before route handlers; return an error to stop the pipeline.
type Validator func(Context) error

type Server struct {
	echo     *Echo
	address  string
	srv      *http.Server
	shutdown time.Duration
}

type RouteRegistrar func(*Echo)

type StartOption func(*Server)

func WithShutdownTimeout(d time.Duration) StartOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdown = d
		}
	}
}

func NewServer(opts ...ServerOption) *Server {
	cfg := defaultServerOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := NewEcho()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = cfg.ErrorHandler
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	for _, mw := range cfg.Middlewares {
		e.Use(mw)
	}
	if len(cfg.Validators) > 0 {
		e.Use(validatorMiddleware(cfg.Validators...))
	}

	return &Server{
		echo:     e,
		address:  cfg.Address,
		shutdown: 5 * time.Second,
	}
}

func (s *Server) RegisterRoutes(reg RouteRegistrar) {
	if reg != nil {
		reg(s.echo)
	}
}

func (s *Server) Handler() http.Handler {
	return s.echo.Echo
}

func (s *Server) Start(ctx context.Context, opts ...StartOption) error {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.srv = &http.Server{
		Addr:         s.address,
		Handler:      s.echo.Echo,
		ReadTimeout:  s.echo.Server.ReadTimeout,
		WriteTimeout: s.echo.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// WriteJSONAPI writes v with the JSON:API content type.
func WriteJSONAPI(c Context, code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(code, MediaTypeJSONAPI, data)
}

// jsonAPIErrorHandler renders errors the way Kitsu does: an "errors" array.
func jsonAPIErrorHandler(err error, c echo.Context) {
	code := StatusInternalError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
			msg = http.StatusText(code)
		default:
			msg = fmt.Sprint(m)
		}
	}
	if c.Response().Committed {
		return
	}
	body := map[string][]APIError{"errors": {{
		Title:  http.StatusText(code),
		Detail: msg,
		Code:   strconv.Itoa(code),
		Status: strconv.Itoa(code),
	}}}
	_ = WriteJSONAPI(c, code, body)
}

func validatorMiddleware(v ...Validator) MiddlewareFunc {
	copied := append([]Validator(nil), v...)
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			for _, validator := range copied {
				if validator == nil {
					continue
				}
				if err := validator(c); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
