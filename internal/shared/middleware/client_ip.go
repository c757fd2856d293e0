package middleware

import (
	"github.com/gin-gonic/gin"

	"newsroom-backend/internal/shared/utils"
)

const ContextKeyClientIP = "client_ip"

// ClientIPMiddleware lấy IP thật của client (sau proxy) cho login audit + log
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, utils.ExtractClientIP(c))
		c.Next()
	}
}

// ClientIP trả về IP đã extract, fallback về gin.ClientIP
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(ContextKeyClientIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}
