package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/wastebill/backend/internal/application/partner"
)

// PartnerHandler handles organization and collector API endpoints
type PartnerHandler struct {
	BaseHandler
	orgService       *partnerapp.OrganizationService
	collectorService *partnerapp.CollectorService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(orgService *partnerapp.OrganizationService, collectorService *partnerapp.CollectorService) *PartnerHandler {
	return &PartnerHandler{
		orgService:       orgService,
		collectorService: collectorService,
	}
}

// CreateOrganizationRequest represents a request to create an organization
type CreateOrganizationRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// CreateOrganization handles POST /partner/organizations
func (h *PartnerHandler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orgService.Create(c.Request.Context(), partnerapp.CreateOrganizationRequest{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetOrganization handles GET /partner/organizations/:id
func (h *PartnerHandler) GetOrganization(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.orgService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListOrganizations handles GET /partner/organizations
func (h *PartnerHandler) ListOrganizations(c *gin.Context) {
	resp, err := h.orgService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeactivateOrganization handles POST /partner/organizations/:id/deactivate
func (h *PartnerHandler) DeactivateOrganization(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.orgService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateCollectorRequest represents a request to create a collector
type CreateCollectorRequest struct {
	OrgID string `json:"org_id" binding:"required,uuid"`
	Code  string `json:"code" binding:"required,min=1,max=50"`
	Name  string `json:"name" binding:"required,min=1,max=255"`
}

// CreateCollector handles POST /partner/collectors
func (h *PartnerHandler) CreateCollector(c *gin.Context) {
	var req CreateCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.collectorService.Create(c.Request.Context(), partnerapp.CreateCollectorRequest{
		OrgID: uuid.MustParse(req.OrgID),
		Code:  req.Code,
		Name:  req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListCollectorsRequest represents collector list query parameters
type ListCollectorsRequest struct {
	OrgID string `form:"org_id" binding:"required,uuid"`
}

// ListCollectors handles GET /partner/collectors
func (h *PartnerHandler) ListCollectors(c *gin.Context) {
	var req ListCollectorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.collectorService.ListActive(c.Request.Context(), uuid.MustParse(req.OrgID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeactivateCollector handles POST /partner/collectors/:id/deactivate
func (h *PartnerHandler) DeactivateCollector(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.collectorService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all partner routes
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	partner := rg.Group("/partner")
	{
		orgs := partner.Group("/organizations")
		{
			orgs.POST("", h.CreateOrganization)
			orgs.GET("", h.ListOrganizations)
			orgs.GET("/:id", h.GetOrganization)
			orgs.POST("/:id/deactivate", h.DeactivateOrganization)
		}

		collectors := partner.Group("/collectors")
		{
			collectors.POST("", h.CreateCollector)
			collectors.GET("", h.ListCollectors)
			collectors.POST("/:id/deactivate", h.DeactivateCollector)
		}
	}
}
