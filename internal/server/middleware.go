package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	HeaderOrg       = "X-Org-ID"
	contextOrgIDKey = "org_id"
)

// OrgContext resolves the acting organization from the X-Org-ID header,
// falling back to the configured default org for single-tenant installs.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if header == "" {
			if s.cfg.DefaultOrgID == 0 {
				AbortWithError(c, newValidationError("org_id", "missing_org", "X-Org-ID header is required"))
				return
			}
			c.Set(contextOrgIDKey, snowflake.ID(s.cfg.DefaultOrgID).String())
			c.Next()
			return
		}

		orgID, err := snowflake.ParseString(header)
		if err != nil || orgID == 0 {
			AbortWithError(c, newValidationError("org_id", "invalid_org", "invalid X-Org-ID header"))
			return
		}
		c.Set(contextOrgIDKey, orgID.String())
		c.Next()
	}
}

func (s *Server) orgID(c *gin.Context) snowflake.ID {
	id, err := snowflake.ParseString(c.GetString(contextOrgIDKey))
	if err != nil {
		return 0
	}
	return id
}
