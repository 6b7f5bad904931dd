package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreateRequestBody struct {
	DonationID string `json:"donation_id"`
}

func (s *Server) CreateDonationRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	s.submitRequest(c, body.DonationID)
}

func (s *Server) ListMyRequests(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	requests, err := s.requestSvc.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ListRequestsForOrg is the path-addressed form of the own-requests listing.
func (s *Server) ListRequestsForOrg(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if c.Param("id") != orgID.String() {
		AbortWithError(c, ErrForbidden)
		return
	}
	s.ListMyRequests(c)
}

func (s *Server) MarkRequestNotified(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.requestSvc.MarkNotified(c.Request.Context(), orgID, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordApprovalNotification(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "notified"})
}
