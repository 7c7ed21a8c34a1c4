package middleware

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/apperr"
	"accessmap/database"
	"accessmap/models"
)

// OrgKey is the context key under which the acting organization id is
// stored for handlers downstream.
const OrgKey = "org_id"

// OrgAuth guards organization-only endpoints. Identity is handled by an
// external provider; this middleware only requires that the supplied
// identifier is registered. It does not verify credentials.
func OrgAuth(orgs *database.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader("X-Org-Id")
		if orgID == "" {
			log.Warnf("Missing X-Org-Id header from %s", c.ClientIP())
			abort(c, apperr.Authorizationf("organization id is missing"))
			return
		}

		exists, err := orgs.OrgExists(c.Request.Context(), orgID)
		if err != nil {
			log.Errorf("Failed to look up org %s: %v", orgID, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !exists {
			log.Warnf("Unknown org id %s from %s", orgID, c.ClientIP())
			abort(c, apperr.Authorizationf("organization %s is not registered", orgID))
			return
		}

		c.Set(OrgKey, orgID)
		c.Next()
	}
}

// abort renders the same kind+message payload the handlers use for this
// error taxonomy.
func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), models.ErrorResponse{
		Kind:    err.Kind.String(),
		Message: err.Message,
	})
}
