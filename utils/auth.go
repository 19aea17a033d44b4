// utils/auth.go
package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"salonpos-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccessCookieName  = "token"
	RefreshCookieName = "refreshToken"

	identityKey = "identity"
)

// BcryptCost is lowered by tests.
var BcryptCost = 14

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	Email  string      `json:"email,omitempty"`
	Role   models.Role `json:"rol,omitempty"`
	ShopID string      `json:"shopId,omitempty"`
	Type   TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *TokenManager) GenerateAccessToken(user models.User) (string, error) {
	now := m.now()
	claims := Claims{
		Email:  user.Email,
		Role:   user.Role,
		ShopID: user.ShopID.String(),
		Type:   AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return m.sign(claims)
}

// GenerateRefreshToken returns the signed token and its claims; the jti is used for revocation.
func (m *TokenManager) GenerateRefreshToken(userID uuid.UUID) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		Type: RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	signed, err := m.sign(*claims)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (m *TokenManager) sign(claims Claims) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT_SECRET not set")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature, expiry and token type.
func (m *TokenManager) Parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID uuid.UUID
	ShopID uuid.UUID
	Email  string
	Role   models.Role
}

func (i Identity) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Auth middleware. Accepts a bearer header or the access token cookie.
func AuthMiddleware(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(AccessCookieName); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization required")
			return
		}

		claims, err := tm.Parse(tokenString, AccessToken)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		shopID, err := uuid.Parse(claims.ShopID)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		c.Set(identityKey, Identity{
			UserID: userID,
			ShopID: shopID,
			Email:  claims.Email,
			Role:   claims.Role,
		})

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Authorization required")
			return
		}
		if !identity.HasRole(roles...) {
			RespondWithError(c, http.StatusForbidden, "Permission denied")
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
