package middleware

import (
	"net/http"

	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// Quota gates chat generation behind the per-user message allowance. It
// consumes one unit per request; non-chat routes are not metered.
func Quota(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("user_id")
		userID, _ := v.(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "unauthorized",
			})
			return
		}

		if err := users.ConsumeQuota(c.Request.Context(), userID); err != nil {
			if utils.IsCode(err, utils.CodeForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"code":                string(utils.CodeForbidden),
					"message":             "message quota exhausted",
					"requires_activation": true,
				})
				return
			}
			c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{
				Code:    utils.CodeInternal,
				Message: "quota check failed",
			})
			return
		}
		c.Next()
	}
}
