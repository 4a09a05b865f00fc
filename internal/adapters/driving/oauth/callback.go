// Package oauth serves the browser side of the authorization flow.
//
// It exposes GET /oauth/authorize, which starts a flow and redirects to the
// upstream consent page, the callback route that completes it, and a health
// check. The same gin engine can host the MCP streamable HTTP handler.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// Route paths.
const (
	AuthorizePath       = "/oauth/authorize"
	DefaultCallbackPath = "/oauth/callback"
	HealthPath          = "/healthz"
)

// Config configures the server.
type Config struct {
	// CallbackPath is the path of the registered redirect URI.
	CallbackPath string
	// RequestsPerSecond and Burst throttle all routes together.
	RequestsPerSecond float64
	Burst             int
}

// Result is the outcome of one callback.
type Result struct {
	Credential *domain.Credential
	Err        error
}

// Server handles the OAuth routes.
type Server struct {
	mu       sync.Mutex
	auth     driving.AuthorizationService
	engine   *gin.Engine
	limiter  *rate.Limiter
	results  chan Result
	server   *http.Server
	listener net.Listener
}

// NewServer creates the OAuth web layer.
func NewServer(auth driving.AuthorizationService, cfg Config) *Server {
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = DefaultCallbackPath
	}
	if !strings.HasPrefix(cfg.CallbackPath, "/") {
		cfg.CallbackPath = "/" + cfg.CallbackPath
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	s := &Server{
		auth:    auth,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		results: make(chan Result, 1),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging())

	// Only the OAuth routes are throttled; mounted handlers are not.
	r.GET(HealthPath, s.handleHealth)
	r.GET(AuthorizePath, s.throttle(), s.handleAuthorize)
	r.GET(cfg.CallbackPath, s.throttle(), s.handleCallback)

	s.engine = r
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Mount serves h for every method under path, e.g. the MCP endpoint.
func (s *Server) Mount(path string, h http.Handler) {
	s.engine.Any(path, gin.WrapH(h))
}

// Results delivers the outcome of each completed callback.
// Only the latest undelivered result is kept.
func (s *Server) Results() <-chan Result {
	return s.results
}

// WaitForCredential blocks until a callback succeeds or fails, or ctx ends.
func (s *Server) WaitForCredential(ctx context.Context) (*domain.Credential, error) {
	select {
	case res := <-s.results:
		return res.Credential, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server: %v", err)
		}
	}()
	logger.Info("listening on http://%s", listener.Addr())
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"auth":   s.auth.State(c.Request.Context()),
	})
}

// handleAuthorize starts a flow and redirects the browser upstream.
func (s *Server) handleAuthorize(c *gin.Context) {
	scope := domain.Scope(c.Query("scope"))
	_, authURL, err := s.auth.BeginAuthorization(c.Request.Context(), scope, "")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// handleCallback completes the flow named by state.
func (s *Server) handleCallback(c *gin.Context) {
	// Provider reported an error, e.g. the user denied access
	if errParam := c.Query("error"); errParam != "" {
		desc := c.Query("error_description")
		err := domain.Errorf(domain.KindTokenExchange, "authorization denied: %s", errParam)
		s.publish(Result{Err: err})
		msg := errParam
		if desc != "" {
			msg += ": " + desc
		}
		page(c, http.StatusBadRequest, "Authorization failed", msg)
		return
	}

	cred, err := s.auth.CompleteAuthorization(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		s.publish(Result{Err: err})
		logger.Warn("authorization callback failed: %v", err)
		page(c, callbackStatus(err), "Authorization failed", err.Error())
		return
	}

	s.publish(Result{Credential: cred})
	logger.Info("authorization complete, scope %s", cred.Scope)
	page(c, http.StatusOK, "Authorization successful!", "You can close this window and return to your assistant.")
}

// publish replaces any undelivered result with res.
func (s *Server) publish(res Result) {
	for {
		select {
		case s.results <- res:
			return
		default:
		}
		select {
		case <-s.results:
		default:
		}
	}
}

func callbackStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTokenExchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// throttle rejects requests beyond the configured rate.
func (s *Server) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// Path only: the query carries codes and state.
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func page(c *gin.Context, status int, title, message string) {
	c.Data(status, "text/html; charset=utf-8", []byte(resultHTML(html.EscapeString(title), html.EscapeString(message))))
}

//nolint:misspell // CSS properties use American spelling
func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>budget-mcp - Authorization</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #FAFAFA;
        }
        .container {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 16px;
            border: 1px solid #C7C8CC;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 {
            color: #333F50;
            margin: 0 0 8px 0;
            font-size: 24px;
            font-weight: 600;
        }
        p {
            color: #7B8088;
            margin: 0;
            font-size: 16px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, title, message)
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
