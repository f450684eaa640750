package handler

import (
	"crypto/subtle"

	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// IntakeAuth accepts either the shared campaign API key (X-API-Key header)
// or a regular staff bearer token. Campaign platforms use the key; signed-in
// staff creating leads from the app use their JWT.
func IntakeAuth(intakeCfg config.IntakeConfig, jwtCfg config.JWTConfig) gin.HandlerFunc {
	jwtAuth := httpkit.AuthRequired(jwtCfg)

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		expected := intakeCfg.GetLeadAPIKey()
		if key != "" && expected != "" && subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1 {
			c.Next()
			return
		}
		jwtAuth(c)
	}
}
