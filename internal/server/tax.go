package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
)

func (s *Server) GetTaxProfile(c *gin.Context) {
	resp, err := s.taxSvc.Get(c.Request.Context(), s.orgID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertTaxProfile(c *gin.Context) {
	var req taxdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)

	resp, err := s.taxSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
