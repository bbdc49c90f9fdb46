// Package server exposes the liveness endpoint used by uptime checks, plus a
// small JSON API for health and phone pairing.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/marslan-786/group-guard/internal/whatsapp"
)

const RunningText = "✅ WhatsApp bot is running..."

var ErrPairingUnavailable = errors.New("phone pairing is not available")

type Status interface {
	IsConnected() bool
	IsLoggedIn() bool
}

type Pairer interface {
	PairPhone(ctx context.Context, phone string) (string, error)
}

type pairRequest struct {
	Number string `json:"number" binding:"required"`
}

type handlers struct {
	status Status
	pairer Pairer
	now    func() time.Time
}

// NewRouter wires the routes. pairer may be nil, in which case pairing
// requests are refused.
func NewRouter(status Status, pairer Pairer) *gin.Engine {
	h := &handlers{status: status, pairer: pairer, now: time.Now}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", h.root)
	r.GET("/healthz", h.health)
	r.POST("/api/pair", h.pair)
	return r
}

func (h *handlers) root(c *gin.Context) {
	c.String(http.StatusOK, RunningText)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"connected": h.status.IsConnected(),
		"logged_in": h.status.IsLoggedIn(),
		"time":      h.now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) pair(c *gin.Context) {
	if h.pairer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrPairingUnavailable.Error()})
		return
	}

	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number is required"})
		return
	}
	number := cleanNumber(req.Number)
	if len(number) < 7 || len(number) > 15 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number must be 7 to 15 digits with country code"})
		return
	}

	code, err := h.pairer.PairPhone(c.Request.Context(), number)
	switch {
	case errors.Is(err, whatsapp.ErrAlreadyPaired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, whatsapp.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"code": code})
	}
}

// cleanNumber keeps digits only; anything else yields an empty string.
func cleanNumber(raw string) string {
	raw = strings.NewReplacer("+", "", " ", "", "-", "").Replace(strings.TrimSpace(raw))
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return ""
		}
	}
	return raw
}

// Run serves handler on addr until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
