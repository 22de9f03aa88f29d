package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// ImportHandler triggers imports and exposes the resulting queues
type ImportHandler struct {
	BaseHandler
	imports   *appsync.ImportService
	processor *appsync.QueueProcessor
	queues    queue.Repository
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports *appsync.ImportService, processor *appsync.QueueProcessor, queues queue.Repository) *ImportHandler {
	return &ImportHandler{
		imports:   imports,
		processor: processor,
		queues:    queues,
	}
}

// QueueResponse summarizes one import queue
type QueueResponse struct {
	ID              string     `json:"id"`
	ConnectorID     string     `json:"connector_id"`
	Name            string     `json:"name"`
	ModelType       string     `json:"model_type"`
	State           string     `json:"state"`
	Total           int        `json:"total"`
	Draft           int        `json:"draft"`
	Done            int        `json:"done"`
	Failed          int        `json:"failed"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// QueueLineResponse is one queued remote record
type QueueLineResponse struct {
	ID          string     `json:"id"`
	RemoteID    string     `json:"remote_id"`
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Log         string     `json:"log,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// QueueDetailResponse is a queue with its lines
type QueueDetailResponse struct {
	QueueResponse
	Lines []QueueLineResponse `json:"lines"`
}

// ProcessStatsResponse reports the outcome of a processing run
type ProcessStatsResponse struct {
	Queues int `json:"queues"`
	Done   int `json:"done"`
	Failed int `json:"failed"`
}

func toQueueResponse(q *queue.Queue) QueueResponse {
	counts := q.Counts()
	return QueueResponse{
		ID:              q.ID.String(),
		ConnectorID:     q.ConnectorID.String(),
		Name:            q.Name,
		ModelType:       string(q.ModelType),
		State:           string(q.State()),
		Total:           counts.Total,
		Draft:           counts.Draft,
		Done:            counts.Done,
		Failed:          counts.Failed,
		LastProcessedAt: q.LastProcessedAt,
		CreatedAt:       q.CreatedAt,
	}
}

func toQueueDetailResponse(q *queue.Queue) QueueDetailResponse {
	resp := QueueDetailResponse{
		QueueResponse: toQueueResponse(q),
		Lines:         make([]QueueLineResponse, 0, len(q.Lines)),
	}
	for _, line := range q.Lines {
		resp.Lines = append(resp.Lines, QueueLineResponse{
			ID:          line.ID.String(),
			RemoteID:    line.RemoteID,
			Name:        line.Name,
			State:       string(line.State),
			Log:         line.Log,
			ProcessedAt: line.ProcessedAt,
		})
	}
	return resp
}

// ImportOrders godoc
// @Summary      Pull new remote orders into an import queue
// @Tags         imports
// @Produce      json
// @Success      201 {object} APIResponse[QueueResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /connectors/{id}/import/orders [post]
func (h *ImportHandler) ImportOrders(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	q, err := h.imports.ImportOrders(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toQueueResponse(q))
}

// ImportProducts godoc
// @Summary      Pull new remote products into an import queue
// @Tags         imports
// @Produce      json
// @Success      201 {object} APIResponse[QueueResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /connectors/{id}/import/products [post]
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	q, err := h.imports.ImportProducts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toQueueResponse(q))
}

// ListQueues godoc
// @Summary      List import queues
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[[]QueueResponse]
// @Router       /queues [get]
func (h *ImportHandler) ListQueues(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := queue.Filter{
		Limit:  req.PageSize,
		Offset: req.Offset(),
	}
	if raw := c.Query("connector_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "invalid connector_id")
			return
		}
		filter.ConnectorID = &id
	}
	if raw := c.Query("model_type"); raw != "" {
		mt := queue.ModelType(raw)
		if !mt.IsValid() {
			h.BadRequest(c, "invalid model_type")
			return
		}
		filter.ModelType = &mt
	}

	queues, err := h.queues.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.queues.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]QueueResponse, 0, len(queues))
	for _, q := range queues {
		items = append(items, toQueueResponse(q))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// GetQueue godoc
// @Summary      Get a queue with its lines
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[QueueDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /queues/{id} [get]
func (h *ImportHandler) GetQueue(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	q, err := h.queues.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQueueDetailResponse(q))
}

// ProcessQueue godoc
// @Summary      Drain one queue now
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[ProcessStatsResponse]
// @Router       /queues/{id}/process [post]
func (h *ImportHandler) ProcessQueue(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	stats, err := h.processor.ProcessQueue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ProcessStatsResponse(stats))
}

// ProcessPending godoc
// @Summary      Drain pending queues now, oldest first
// @Tags         imports
// @Produce      json
// @Success      200 {object} APIResponse[ProcessStatsResponse]
// @Router       /queues/process-pending [post]
func (h *ImportHandler) ProcessPending(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := parsePositiveInt(raw); err == nil {
			limit = n
		}
	}
	stats, err := h.processor.ProcessPending(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ProcessStatsResponse(stats))
}

// RegisterRoutes registers import and queue routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	connectors := rg.Group("/connectors")
	{
		connectors.POST("/:id/import/orders", h.ImportOrders)
		connectors.POST("/:id/import/products", h.ImportProducts)
	}
	queues := rg.Group("/queues")
	{
		queues.GET("", h.ListQueues)
		queues.GET("/:id", h.GetQueue)
		queues.POST("/:id/process", h.ProcessQueue)
		queues.POST("/process-pending", h.ProcessPending)
	}
}
