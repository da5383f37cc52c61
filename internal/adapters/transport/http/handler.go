package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	appsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/service"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    appsvc.Service
	health HealthChecker
	log    *zap.Logger
}

func NewHandler(svc appsvc.Service, health HealthChecker, log *zap.Logger) *Handler {
	return &Handler{svc: svc, health: health, log: log}
}

// Mount registers the account routes under /v1/users and the health probe.
func (h *Handler) Mount(r gin.IRouter) {
	users := r.Group("/v1/users")
	users.POST("/register", h.register)
	users.POST("/login", h.login)
	users.GET("/me", h.me)

	r.GET("/health", h.healthCheck)
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	acc, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		// the only encoding input on this path is the submitted password
		if customErrors.IsEncoding(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password cannot be encoded"})
			return
		}
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountDTO(acc))
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	tok, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenDTO{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
	})
}

func (h *Handler) me(c *gin.Context) {
	raw, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")

	acc, err := h.svc.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountDTO(acc))
}

func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		body := gin.H{"error": "bad credentials"}
		var nf *customErrors.UserNotFoundError
		if errors.As(err, &nf) {
			body["username"] = nf.Username
		}
		c.JSON(http.StatusUnauthorized, body)
	case customErrors.IsInvalidToken(err):
		reason, _ := customErrors.TokenReason(err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "reason": reason})
	case customErrors.IsAlreadyExists(err):
		field, _ := customErrors.DuplicateField(err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": field})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toAccountDTO(acc model.Account) dto.AccountDTO {
	return dto.AccountDTO{ID: acc.ID, Username: acc.Username, Email: acc.Email}
}
