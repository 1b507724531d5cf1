package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/halls510/developerstore-sales-api-sub001/configs"
	"github.com/halls510/developerstore-sales-api-sub001/internal/security"
)

type TokenHandler struct {
	cfg configs.Config
}

func NewTokenHandler(cfg configs.Config) *TokenHandler {
	return &TokenHandler{cfg: cfg}
}

// IssueToken handles POST /v1/token with client_id/client_secret form
// fields and returns an HS256 bearer token carrying the client's perms.
func (h *TokenHandler) IssueToken(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client"})
		return
	}

	cl, ok := security.Clients[clientID]
	if !ok || !cl.Enabled || clientSecret != cl.Secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      h.cfg.Security.Issuer,
		"aud":      h.cfg.Security.Audience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(h.cfg.Security.TTL).Unix(),
		"clientID": clientID,
		"perms":    cl.Perms,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.Security.TTL.Seconds()),
	})
}
