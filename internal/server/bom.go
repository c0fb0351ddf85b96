package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
)

func (s *Server) CreateBOM(c *gin.Context) {
	var req bomdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)

	resp, err := s.bomSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBOMs(c *gin.Context) {
	resp, err := s.bomSvc.List(c.Request.Context(), s.orgID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBOMByID(c *gin.Context) {
	resp, err := s.bomSvc.Get(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBOM(c *gin.Context) {
	var req bomdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.bomSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBOM(c *gin.Context) {
	if err := s.bomSvc.Delete(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) GetBOMCost(c *gin.Context) {
	resp, err := s.bomSvc.Cost(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
