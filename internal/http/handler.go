package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/textilia/contracts-service/internal/http/middleware"
	"github.com/textilia/contracts-service/internal/model"
	"github.com/textilia/contracts-service/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, log: log}
}

type createContractRequest struct {
	ContractDate     string   `json:"contractDate" binding:"required"`
	ContractType     string   `json:"contractType" binding:"required"`
	CustomerID       string   `json:"customerId" binding:"required"`
	Description      []string `json:"description" binding:"required"`
	PONumber         string   `json:"poNumber" binding:"required"`
	SONumber         string   `json:"soNumber" binding:"required"`
	Specs            string   `json:"specs" binding:"required"`
	ConeWeight       float64  `json:"coneWeight" binding:"required"`
	Rate             float64  `json:"rate" binding:"required"`
	Quantity         string   `json:"quantity" binding:"required"`
	Balance          string   `json:"balance"`
	StartDate        string   `json:"startDate" binding:"required"`
	EndDate          string   `json:"endDate" binding:"required"`
	Status           string   `json:"status" binding:"required"`
	CustomerName     string   `json:"customerName" binding:"required"`
	Aging            string   `json:"aging"`
	AllocationNumber string   `json:"allocationNumber"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": err.Error()})
		return
	}

	customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": "invalid customerId"})
		return
	}

	proposalIDs := make([]uuid.UUID, 0, len(req.Description))
	for _, raw := range req.Description {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": "invalid proposal reference"})
			return
		}
		proposalIDs = append(proposalIDs, id)
	}

	contractDate, err := parseDate(req.ContractDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": "invalid contractDate"})
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": "invalid startDate"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": "invalid endDate"})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), service.CreateContractInput{
		Supplier:         principal,
		ContractDate:     contractDate,
		ContractType:     model.ContractType(req.ContractType),
		CustomerID:       customerID,
		ProposalIDs:      proposalIDs,
		PONumber:         req.PONumber,
		SONumber:         req.SONumber,
		Specs:            req.Specs,
		ConeWeight:       req.ConeWeight,
		Rate:             req.Rate,
		Quantity:         req.Quantity,
		Balance:          req.Balance,
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           model.ContractStatus(req.Status),
		CustomerName:     req.CustomerName,
		Aging:            req.Aging,
		AllocationNumber: req.AllocationNumber,
	})
	if err != nil {
		// Every creation failure, persistence included, answers 400
		// with the underlying message.
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create contract", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "contract created successfully", "contract": contract})
}

type updateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

func (h *Handler) updateContractStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(c.Query("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "invalid contract id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "invalid status"})
		return
	}

	err = h.contracts.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		ContractID: contractID,
		Status:     req.Status,
		Reason:     req.Reason,
		Caller:     principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "invalid status"})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "unauthorized"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "contract not found"})
		default:
			h.log.Error().Err(err).Msg("update contract status failed")
			c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "message": "contract status updated successfully"})
}

func (h *Handler) contractDetail(c *gin.Context) {
	contractID, err := uuid.Parse(strings.TrimSpace(c.Query("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	view, err := h.contracts.Detail(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err, "get contract detail failed")
		return
	}
	c.JSON(http.StatusOK, view)
}

type listCall func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error)

func (h *Handler) listWith(c *gin.Context, rawUserID string, call listCall) {
	userID, err := uuid.Parse(strings.TrimSpace(rawUserID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	views, err := call(c, userID)
	if err != nil {
		h.handleError(c, err, "list contracts failed")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) listAll(c *gin.Context) {
	h.listWith(c, c.Query("user_id"), func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error) {
		return h.contracts.ListAll(c.Request.Context(), userID)
	})
}

func (h *Handler) listRunning(c *gin.Context) {
	h.listWith(c, c.Query("user_id"), func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error) {
		return h.contracts.ListRunning(c.Request.Context(), userID)
	})
}

func (h *Handler) listCompleted(c *gin.Context) {
	h.listWith(c, c.Param("userId"), func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error) {
		return h.contracts.ListCompleted(c.Request.Context(), userID)
	})
}

func (h *Handler) listBlockBooking(c *gin.Context) {
	h.listWith(c, c.Query("user_id"), func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error) {
		return h.contracts.ListBlockBooking(c.Request.Context(), userID)
	})
}

func (h *Handler) listNew(c *gin.Context) {
	h.listWith(c, c.Param("userId"), func(c *gin.Context, userID uuid.UUID) ([]model.ContractView, error) {
		return h.contracts.ListNew(c.Request.Context(), userID)
	})
}

type acceptContractRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	SupplierID string `json:"supplierId" binding:"required"`
}

func (h *Handler) acceptContract(c *gin.Context) {
	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contract id"})
		return
	}

	var req acceptContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid customerId"})
		return
	}
	supplierID, err := uuid.Parse(strings.TrimSpace(req.SupplierID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid supplierId"})
		return
	}

	contract, err := h.contracts.Accept(c.Request.Context(), service.AcceptContractInput{
		ContractID: contractID,
		CustomerID: customerID,
		SupplierID: supplierID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "contract not found"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid client or supplier"})
		default:
			h.log.Error().Err(err).Msg("accept contract failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "error accepting contract"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contract accepted successfully", "contract": contract})
}

type soDocumentRequest struct {
	Name string `json:"name" binding:"required"`
	Path string `json:"path" binding:"required"`
}

func (h *Handler) uploadSODocument(c *gin.Context) {
	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contract id"})
		return
	}

	var req soDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	contract, err := h.contracts.AttachSODocument(c.Request.Context(), contractID, req.Name, req.Path)
	if err != nil {
		h.handleError(c, err, "upload so document failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SO document uploaded successfully", "contract": contract})
}

type monthlyPlanEntry struct {
	Date     string  `json:"date" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

type contractPlans struct {
	ContractID   string             `json:"contractId" binding:"required"`
	MonthlyPlans []monthlyPlanEntry `json:"monthlyPlans" binding:"required"`
}

type createMonthlyPlansRequest struct {
	Contracts []contractPlans `json:"contracts" binding:"required"`
}

func (h *Handler) createMonthlyPlans(c *gin.Context) {
	var req createMonthlyPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	batch := make([]service.ContractPlansInput, 0, len(req.Contracts))
	for _, item := range req.Contracts {
		contractID, err := uuid.Parse(strings.TrimSpace(item.ContractID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contractId"})
			return
		}
		plans := make([]service.PlanEntry, 0, len(item.MonthlyPlans))
		for _, plan := range item.MonthlyPlans {
			date, err := parseDate(plan.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "invalid plan date"})
				return
			}
			plans = append(plans, service.PlanEntry{Date: date, Quantity: plan.Quantity})
		}
		batch = append(batch, service.ContractPlansInput{ContractID: contractID, Plans: plans})
	}

	if err := h.contracts.CreateMonthlyPlans(c.Request.Context(), batch); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("create monthly plans failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "monthly plans created successfully"})
}

func (h *Handler) monthlyPlansForContract(c *gin.Context) {
	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("contractId")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contract id"})
		return
	}

	plans, err := h.contracts.PlansForContract(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err, "get monthly plans failed")
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) contractStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	stats, err := h.contracts.Stats(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err, "get contract stats failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        true,
		"message":       "data found",
		"general":       stats.General,
		"block_booking": stats.BlockBooking,
		"total":         stats.Total,
	})
}

func (h *Handler) exportContractStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.contracts.StatsWorkbook(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err, "export contract stats failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) contractDocument(c *gin.Context) {
	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contract id"})
		return
	}

	result, err := h.contracts.ContractPDF(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err, "generate contract document failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error, logMessage string) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
	default:
		h.log.Error().Err(err).Msg(logMessage)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
