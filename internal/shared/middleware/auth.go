package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared/response"
	"newsroom-backend/pkg/jwt"
)

// Context keys (gin)
const (
	ContextKeyUserID = "userID"
	ContextKeyActor  = "actor"
)

// ActorResolver đọc role hiện tại của user từ nguồn sự thật (users table)
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (workflow.Actor, error)
}

// AuthMiddleware - xác thực JWT rồi resolve actor cho mỗi request.
// Token chỉ mang user_id, role luôn đọc lại từ DB.
func AuthMiddleware(tokens *jwt.Manager, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "missing authorization header")
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "invalid authorization header format")
			return
		}

		// 3. Verify JWT
		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.AbortWithError(c, 401, response.CodeUnauthorized, "invalid user ID in token")
			return
		}

		// 4. Resolve actor (role mới nhất)
		actor, err := resolver.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, workflow.ErrStorageFailure) {
				log.Error().Err(err).Str("user_id", userID.String()).Msg("resolve actor failed")
				response.AbortWithError(c, 500, response.CodeInternal, "could not resolve user")
				return
			}
			response.AbortWithError(c, 401, response.CodeUnauthorized, err.Error())
			return
		}

		// 5. Set vào cả gin context và request context
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyActor, actor)
		c.Request = c.Request.WithContext(workflow.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// RequireRole chặn request nếu actor không thuộc một trong các role cho phép
func RequireRole(roles ...workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := workflow.ActorFrom(c.Request.Context())
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		response.AbortWithError(c, 403, workflow.ErrCodePermissionDenied, "access denied for role "+actor.Role.String())
	}
}
