package server

import (
	"net/http"
	"strings"
	"time"

	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDonation(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req donationdomain.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.Create(c.Request.Context(), orgID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, donation)
}

func (s *Server) ListMyDonations(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	donations, err := s.donationSvc.ListMine(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (s *Server) ListAvailableDonations(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	donations, err := s.donationSvc.ListAvailableFromOthers(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

// ListOrgDonations is the path-addressed form of the own-donations listing.
func (s *Server) ListOrgDonations(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if c.Param("id") != orgID.String() {
		AbortWithError(c, ErrForbidden)
		return
	}
	s.ListMyDonations(c)
}

// ListExpiringDonations lists the caller's own donations that fall due
// within the configured window.
func (s *Server) ListExpiringDonations(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	window := time.Duration(s.policy.Get().ExpiringSoonDays) * 24 * time.Hour

	donations, err := s.donationSvc.ExpiringSoonMine(c.Request.Context(), orgID, window)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (s *Server) GetDonation(c *gin.Context) {
	donation, err := s.donationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *Server) UpdateDonation(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req donationdomain.UpdateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.Update(c.Request.Context(), orgID, c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *Server) CancelDonation(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	donation, err := s.donationSvc.Cancel(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

// SubmitDonationRequest handles the claim shortcut on the donation resource.
func (s *Server) SubmitDonationRequest(c *gin.Context) {
	s.submitRequest(c, c.Param("id"))
}

func (s *Server) submitRequest(c *gin.Context, donationID string) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if strings.TrimSpace(donationID) == "" {
		AbortWithError(c, newValidationError("donation_id", "missing_field", "donation id is required"))
		return
	}

	request, err := s.requestSvc.Submit(c.Request.Context(), orgID, donationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}
