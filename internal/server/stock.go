package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
)

func (s *Server) LookupStock(c *gin.Context) {
	productID, err := parseSnowflakeID(c.Query("product_id"))
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product", "invalid product_id"))
		return
	}

	resp, err := s.stockSvc.Lookup(c.Request.Context(), s.orgID(c), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdjustStock(c *gin.Context) {
	var req stockdomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.WarehouseID = strings.TrimSpace(req.WarehouseID)

	resp, err := s.stockSvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
