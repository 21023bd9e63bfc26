package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"Huddle/logger"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

var ErrMissingToken = errors.New("missing bearer token")

// IdentityProvider turns a bearer token into a user id.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HMAC-signed tokens carrying a user_id claim.
type JWTProvider struct {
	Secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{Secret: []byte(secret)}
}

func (p *JWTProvider) Verify(_ context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.UserID == "" {
		return "", errors.New("invalid token: missing user_id")
	}
	return claims.UserID, nil
}

// Issue signs a token for userID. Used by tests and local tooling.
func (p *JWTProvider) Issue(userID string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID, RegisteredClaims: claims})
	return token.SignedString(p.Secret)
}

type firebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseProvider verifies Firebase ID tokens; the user id is the Firebase UID.
type FirebaseProvider struct {
	client firebaseVerifier
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) Verify(ctx context.Context, tokenString string) (string, error) {
	token, err := p.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// bearerToken reads the Authorization header, falling back to ?token= since
// browsers cannot set headers on a websocket upgrade.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func AuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingToken.Error()})
			return
		}

		userID, err := provider.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debug("token rejected", "path", c.FullPath(), "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by AuthMiddleware.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
