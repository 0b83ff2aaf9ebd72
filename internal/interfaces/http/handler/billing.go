package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	billingapp "github.com/wastebill/backend/internal/application/billing"
)

// BillingHandler handles billing-related API endpoints: item intake, summary
// generation and workflow, invoice composition, and commission rules
type BillingHandler struct {
	BaseHandler
	itemService     *billingapp.ItemService
	summaryService  *billingapp.SummaryService
	workflowService *billingapp.SummaryWorkflowService
	invoiceService  *billingapp.InvoiceService
	ruleService     *billingapp.RuleService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	itemService *billingapp.ItemService,
	summaryService *billingapp.SummaryService,
	workflowService *billingapp.SummaryWorkflowService,
	invoiceService *billingapp.InvoiceService,
	ruleService *billingapp.RuleService,
) *BillingHandler {
	return &BillingHandler{
		itemService:     itemService,
		summaryService:  summaryService,
		workflowService: workflowService,
		invoiceService:  invoiceService,
		ruleService:     ruleService,
	}
}

// RecordItemRequest represents a request to record a billing item
type RecordItemRequest struct {
	OrgID        string  `json:"org_id" binding:"required,uuid"`
	CollectorID  string  `json:"collector_id" binding:"required,uuid"`
	StoreID      string  `json:"store_id" binding:"required,uuid"`
	BillingMonth string  `json:"billing_month" binding:"required"`
	BillingType  string  `json:"billing_type" binding:"required,oneof=FIXED METERED OTHER"`
	Amount       float64 `json:"amount" binding:"min=0"`
	TaxAmount    float64 `json:"tax_amount" binding:"min=0"`
}

// RecordItem handles POST /billing/items
func (h *BillingHandler) RecordItem(c *gin.Context) {
	var req RecordItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.itemService.Record(c.Request.Context(), billingapp.RecordItemRequest{
		OrgID:        uuid.MustParse(req.OrgID),
		CollectorID:  uuid.MustParse(req.CollectorID),
		StoreID:      uuid.MustParse(req.StoreID),
		BillingMonth: req.BillingMonth,
		BillingType:  req.BillingType,
		Amount:       decimal.NewFromFloat(req.Amount),
		TaxAmount:    decimal.NewFromFloat(req.TaxAmount),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ApproveItem handles POST /billing/items/:id/approve
func (h *BillingHandler) ApproveItem(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.itemService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RejectItem handles POST /billing/items/:id/reject
func (h *BillingHandler) RejectItem(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.itemService.Reject(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GenerateSummariesRequest represents a request to run summary generation
type GenerateSummariesRequest struct {
	OrgID           string   `json:"org_id" binding:"required,uuid"`
	BillingMonth    string   `json:"billing_month" binding:"required"`
	TaxRate         *float64 `json:"tax_rate"`
	ForceRegenerate bool     `json:"force_regenerate"`
}

// GenerateSummaries handles POST /billing/summaries/generate
func (h *BillingHandler) GenerateSummaries(c *gin.Context) {
	var req GenerateSummariesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.summaryService.GenerateSummaries(c.Request.Context(), billingapp.GenerateSummariesRequest{
		OrgID:           uuid.MustParse(req.OrgID),
		BillingMonth:    req.BillingMonth,
		TaxRate:         req.TaxRate,
		ForceRegenerate: req.ForceRegenerate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListSummariesRequest represents summary list query parameters
type ListSummariesRequest struct {
	OrgID        string `form:"org_id" binding:"required,uuid"`
	BillingMonth string `form:"billing_month"`
	Status       string `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED FINALIZED CANCELLED"`
}

// ListSummaries handles GET /billing/summaries
func (h *BillingHandler) ListSummaries(c *gin.Context) {
	var req ListSummariesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.workflowService.List(c.Request.Context(), billingapp.ListSummariesRequest{
		OrgID:        uuid.MustParse(req.OrgID),
		BillingMonth: req.BillingMonth,
		Status:       req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SubmitSummary handles POST /billing/summaries/:id/submit
func (h *BillingHandler) SubmitSummary(c *gin.Context) {
	h.transitionSummary(c, h.workflowService.Submit)
}

// ApproveSummary handles POST /billing/summaries/:id/approve
func (h *BillingHandler) ApproveSummary(c *gin.Context) {
	h.transitionSummary(c, h.workflowService.Approve)
}

// RejectSummary handles POST /billing/summaries/:id/reject
func (h *BillingHandler) RejectSummary(c *gin.Context) {
	h.transitionSummary(c, h.workflowService.Reject)
}

// GenerateInvoiceRequest represents a request to compose a tenant invoice
type GenerateInvoiceRequest struct {
	OrgID        string `json:"org_id" binding:"required,uuid"`
	BillingMonth string `json:"billing_month" binding:"required"`
}

// GenerateInvoice handles POST /billing/invoices/generate
func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.GenerateInvoice(c.Request.Context(), billingapp.GenerateInvoiceRequest{
		OrgID:        uuid.MustParse(req.OrgID),
		BillingMonth: req.BillingMonth,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetInvoice handles GET /billing/invoices/:id
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListInvoicesRequest represents invoice list query parameters
type ListInvoicesRequest struct {
	OrgID string `form:"org_id" binding:"required,uuid"`
}

// ListInvoices handles GET /billing/invoices
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), uuid.MustParse(req.OrgID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CreateRuleRequest represents a request to create a commission rule
type CreateRuleRequest struct {
	OrgID           string  `json:"org_id" binding:"required,uuid"`
	CollectorID     *string `json:"collector_id" binding:"omitempty,uuid"`
	BillingType     string  `json:"billing_type" binding:"required,oneof=METERED FIXED ALL OTHER"`
	CommissionType  string  `json:"commission_type" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	CommissionValue float64 `json:"commission_value" binding:"min=0"`
	EffectiveFrom   string  `json:"effective_from" binding:"required,billingmonth"`
	EffectiveTo     string  `json:"effective_to" binding:"omitempty,billingmonth"`
}

// CreateRule handles POST /billing/commission-rules
func (h *BillingHandler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.CreateRuleRequest{
		OrgID:           uuid.MustParse(req.OrgID),
		BillingType:     req.BillingType,
		CommissionType:  req.CommissionType,
		CommissionValue: decimal.NewFromFloat(req.CommissionValue),
		EffectiveFrom:   req.EffectiveFrom,
		EffectiveTo:     req.EffectiveTo,
	}
	if req.CollectorID != nil {
		id := uuid.MustParse(*req.CollectorID)
		appReq.CollectorID = &id
	}

	resp, err := h.ruleService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListRulesRequest represents rule list query parameters
type ListRulesRequest struct {
	OrgID string `form:"org_id" binding:"required,uuid"`
}

// ListRules handles GET /billing/commission-rules
func (h *BillingHandler) ListRules(c *gin.Context) {
	var req ListRulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ruleService.ListActive(c.Request.Context(), uuid.MustParse(req.OrgID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeactivateRule handles POST /billing/commission-rules/:id/deactivate
func (h *BillingHandler) DeactivateRule(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.ruleService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *BillingHandler) transitionSummary(c *gin.Context, fn func(context.Context, uuid.UUID) (*billingapp.BillingSummaryResponse, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers all billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	{
		items := billing.Group("/items")
		{
			items.POST("", h.RecordItem)
			items.POST("/:id/approve", h.ApproveItem)
			items.POST("/:id/reject", h.RejectItem)
		}

		summaries := billing.Group("/summaries")
		{
			summaries.POST("/generate", h.GenerateSummaries)
			summaries.GET("", h.ListSummaries)
			summaries.POST("/:id/submit", h.SubmitSummary)
			summaries.POST("/:id/approve", h.ApproveSummary)
			summaries.POST("/:id/reject", h.RejectSummary)
		}

		invoices := billing.Group("/invoices")
		{
			invoices.POST("/generate", h.GenerateInvoice)
			invoices.GET("", h.ListInvoices)
			invoices.GET("/:id", h.GetInvoice)
		}

		rules := billing.Group("/commission-rules")
		{
			rules.POST("", h.CreateRule)
			rules.GET("", h.ListRules)
			rules.POST("/:id/deactivate", h.DeactivateRule)
		}
	}
}
