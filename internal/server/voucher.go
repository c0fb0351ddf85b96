package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

func (s *Server) CreateVoucher(c *gin.Context) {
	var req voucherdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)

	resp, err := s.voucherSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVouchers(c *gin.Context) {
	var query struct {
		Type    string `form:"type"`
		Status  string `form:"status"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.voucherSvc.List(c.Request.Context(), voucherdomain.ListRequest{
		OrgID:   s.orgID(c),
		Type:    strings.TrimSpace(query.Type),
		Status:  strings.TrimSpace(query.Status),
		SortBy:  strings.TrimSpace(query.SortBy),
		OrderBy: strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVoucherByID(c *gin.Context) {
	resp, err := s.voucherSvc.Get(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddVoucherLine(c *gin.Context) {
	resp, err := s.voucherSvc.AddLine(c.Request.Context(), voucherdomain.AddLineRequest{
		OrgID:     s.orgID(c),
		VoucherID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveVoucherLine(c *gin.Context) {
	resp, err := s.voucherSvc.RemoveLine(c.Request.Context(), s.orgID(c),
		strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("line_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVoucherLine(c *gin.Context) {
	var req voucherdomain.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)
	req.VoucherID = strings.TrimSpace(c.Param("id"))
	req.LineID = strings.TrimSpace(c.Param("line_id"))

	resp, err := s.voucherSvc.UpdateLine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SelectVoucherLineProduct(c *gin.Context) {
	var req voucherdomain.SelectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrgID = s.orgID(c)
	req.VoucherID = strings.TrimSpace(c.Param("id"))
	req.LineID = strings.TrimSpace(c.Param("line_id"))

	resp, err := s.voucherSvc.SelectProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetVoucherSupplyType(c *gin.Context) {
	var req struct {
		SupplyType string `json:"supply_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.voucherSvc.SetSupplyType(c.Request.Context(), voucherdomain.SetSupplyTypeRequest{
		OrgID:      s.orgID(c),
		VoucherID:  strings.TrimSpace(c.Param("id")),
		SupplyType: taxdomain.SupplyType(strings.TrimSpace(req.SupplyType)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVoucherTotals(c *gin.Context) {
	resp, err := s.voucherSvc.Totals(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FinalizeVoucher(c *gin.Context) {
	resp, err := s.voucherSvc.Finalize(c.Request.Context(), s.orgID(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVoucherPDF(c *gin.Context) {
	voucherID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, voucherdomain.ErrInvalidID)
		return
	}

	voucher, err := s.voucherRepo.FindByID(c.Request.Context(), s.orgID(c), voucherID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if voucher == nil {
		AbortWithError(c, voucherdomain.ErrNotFound)
		return
	}

	doc, err := s.pdfSvc.RenderVoucher(c.Request.Context(), voucher)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := voucher.Number
	if filename == "" {
		filename = voucher.ID.String()
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, filename))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}
