package server

import (
	"net/http"
	"strings"
	"time"

	authdomain "github.com/foodbridge/foodbridge/internal/auth/domain"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type DecisionBody struct {
	Notes string `json:"notes"`
}

type StatusBody struct {
	Status string `json:"status"`
}

func (s *Server) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.AdminLogin(c.Request.Context(), authdomain.AdminLoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AdminLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) AdminListOrganizations(c *gin.Context) {
	orgs, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

type AdminDonationPage struct {
	Donations []donationdomain.Donation `json:"donations"`
	PageInfo  pagination.PageInfo       `json:"page_info"`
}

func (s *Server) AdminListDonations(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	donations, info, err := s.donationSvc.ListPage(c.Request.Context(), status, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if donations == nil {
		donations = []donationdomain.Donation{}
	}
	c.JSON(http.StatusOK, AdminDonationPage{Donations: donations, PageInfo: info})
}

func (s *Server) AdminUpdateDonationStatus(c *gin.Context) {
	var body StatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *Server) AdminListPendingRequests(c *gin.Context) {
	views, err := s.requestSvc.ListPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) AdminApproveRequest(c *gin.Context) {
	var body DecisionBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	request, err := s.requestSvc.Approve(c.Request.Context(), c.Param("id"), adminIDFromContext(c), body.Notes)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (s *Server) AdminRejectRequest(c *gin.Context) {
	var body DecisionBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	request, err := s.requestSvc.Reject(c.Request.Context(), c.Param("id"), adminIDFromContext(c), body.Notes)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
