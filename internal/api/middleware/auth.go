package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"job-board-api/internal/authz"
	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	principalCtx        = "principal" // Key to store the authz.Principal in context
)

// Claims is the session token issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role,omitempty"`
}

// JWTAuthMiddleware verifies the bearer token and stores the caller's Principal in the context.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			log.Println("Auth middleware: Authorization header missing")
			abortUnauthenticated(c, "Authorization header required")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			log.Println("Auth middleware: Invalid Authorization header format")
			abortUnauthenticated(c, "Invalid Authorization header format")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			log.Printf("Auth middleware: Error parsing token: %v", err)
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthenticated(c, "Token has expired")
			} else {
				abortUnauthenticated(c, "Invalid token")
			}
			return
		}
		if !token.Valid {
			abortUnauthenticated(c, "Invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil || userID == uuid.Nil {
			log.Printf("Auth middleware: Invalid user ID in token subject '%s': %v", claims.Subject, err)
			abortUnauthenticated(c, "Invalid user identifier in token")
			return
		}

		role := claims.Role
		if role == "" {
			role = models.RoleUser
		}
		if !role.IsValid() {
			log.Printf("Auth middleware: Unknown role '%s' for user %s", role, userID)
			abortUnauthenticated(c, "Invalid role in token")
			return
		}

		c.Set(principalCtx, authz.Principal{UserID: userID, Role: role})
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msg, Code: "UNAUTHENTICATED"})
}

// GetPrincipalFromContext returns the caller set by JWTAuthMiddleware.
func GetPrincipalFromContext(c *gin.Context) (authz.Principal, error) {
	v, exists := c.Get(principalCtx)
	if !exists {
		return authz.Principal{}, errors.New("principal not found in context")
	}
	p, ok := v.(authz.Principal)
	if !ok {
		return authz.Principal{}, errors.New("principal in context is of invalid type")
	}
	return p, nil
}

// SetPrincipal stores p in the context. Used by tests and internal callers that authenticate by other means.
func SetPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(principalCtx, p)
}
