package handler

import (
	"net/http"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	usecaseport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	trnUseCase "github.com/amirhossein-jamali/trn-engine/internal/domain/usecase/trn"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// TrnHandler handles transaction-related HTTP requests
type TrnHandler struct {
	trnService   usecaseport.TrnUseCase
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewTrnHandler creates a new transaction handler instance
func NewTrnHandler(
	trnService usecaseport.TrnUseCase,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *TrnHandler {
	return &TrnHandler{
		trnService:   trnService,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Submit handles the POST /portfolio/:portfolioId/trn endpoint
func (h *TrnHandler) Submit(c *gin.Context) {
	portfolioID := c.Param("portfolioId")

	var req dto.TrnSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid transaction request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	trnRequest := usecaseport.TrnRequest{
		PortfolioID: portfolioID,
		Data:        make([]usecaseport.TrnInput, len(req.Data)),
	}
	for i, input := range req.Data {
		trnRequest.Data[i] = toTrnInput(input)
	}

	trns, err := h.trnService.Submit(c.Request.Context(), trnRequest)
	if err != nil {
		h.respondError(c, err, map[string]any{"portfolio_id": portfolioID})
		return
	}

	response := dto.TrnSubmitResponse{Trns: make([]dto.TrnResponse, len(trns))}
	for i, trn := range trns {
		response.Trns[i] = toTrnResponse(trn)
	}
	c.JSON(http.StatusCreated, response)
}

// CashLadder handles the GET /portfolio/:portfolioId/ladder endpoint
func (h *TrnHandler) CashLadder(c *gin.Context) {
	portfolioID := c.Param("portfolioId")

	cashAssetID := c.Query("cashAssetId")
	if cashAssetID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Missing required query parameter: cashAssetId",
		})
		return
	}

	asOf := h.timeProvider.Now()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
				Message: "Invalid asOf date, expected YYYY-MM-DD",
			})
			return
		}
		asOf = parsed
	}

	trns, err := h.trnService.CashLedger(c.Request.Context(), portfolioID, cashAssetID, asOf)
	if err != nil {
		h.respondError(c, err, map[string]any{
			"portfolio_id":  portfolioID,
			"cash_asset_id": cashAssetID,
		})
		return
	}

	response := dto.CashLadderResponse{
		PortfolioID: portfolioID,
		CashAssetID: cashAssetID,
		AsOf:        asOf.Format(dateLayout),
		Entries:     make([]dto.LadderEntryResponse, len(trns)),
	}
	for i, trn := range trns {
		response.Entries[i] = dto.LadderEntryResponse{
			Trn:    toTrnResponse(trn),
			Amount: trn.LedgerAmount(cashAssetID),
		}
	}
	c.JSON(http.StatusOK, response)
}

// Export handles the GET /portfolio/:portfolioId/trn/export endpoint,
// streaming the portfolio's transactions as CSV
func (h *TrnHandler) Export(c *gin.Context) {
	portfolioID := c.Param("portfolioId")

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trns-`+portfolioID+`.csv"`)

	if err := h.trnService.Export(c.Request.Context(), portfolioID, c.Writer); err != nil {
		// Headers may already be out; log and surface what we can.
		h.logger.Error("Export failed", map[string]any{
			"portfolio_id": portfolioID,
			"error":        err.Error(),
		})
		c.Status(trnUseCase.StatusCodeFor(err))
	}
}

// Settle handles the POST /trn/settle endpoint, running one settlement sweep
func (h *TrnHandler) Settle(c *gin.Context) {
	settled, err := h.trnService.AutoSettle(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.SettleResponse{Settled: settled})
}

func (h *TrnHandler) respondError(c *gin.Context, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	h.logger.Error("Request failed", fields)

	c.JSON(trnUseCase.StatusCodeFor(err), dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: err.Error(),
	})
}

func toTrnInput(req dto.TrnInputRequest) usecaseport.TrnInput {
	return usecaseport.TrnInput{
		CallerRef: entity.CallerRef{
			Provider: req.CallerRef.Provider,
			Batch:    req.CallerRef.Batch,
			CallerID: req.CallerRef.CallerID,
		},
		AssetID:            req.AssetID,
		CashAssetID:        req.CashAssetID,
		TrnType:            req.TrnType,
		Quantity:           req.Quantity,
		Price:              req.Price,
		Fees:               req.Fees,
		TradeCurrency:      req.TradeCurrency,
		CashCurrency:       req.CashCurrency,
		TradeDate:          req.TradeDate,
		SettleDate:         req.SettleDate,
		TradeAmount:        req.TradeAmount,
		CashAmount:         req.CashAmount,
		TradeCashRate:      req.TradeCashRate,
		TradeBaseRate:      req.TradeBaseRate,
		TradePortfolioRate: req.TradePortfolioRate,
		Status:             req.Status,
		Comments:           req.Comments,
		SubAccounts:        req.SubAccounts,
	}
}

func toTrnResponse(trn *entity.Trn) dto.TrnResponse {
	var settleDate *string
	if trn.SettleDate != nil {
		formatted := trn.SettleDate.Format(dateLayout)
		settleDate = &formatted
	}
	return dto.TrnResponse{
		ID:                 trn.ID,
		PortfolioID:        trn.PortfolioID,
		AssetID:            trn.AssetID,
		CashAssetID:        trn.CashAssetID,
		TrnType:            string(trn.TrnType),
		Status:             string(trn.Status),
		Quantity:           trn.Quantity,
		Price:              trn.Price,
		Fees:               trn.Fees,
		TradeAmount:        trn.TradeAmount,
		CashAmount:         trn.CashAmount,
		TradeCurrency:      trn.TradeCurrency,
		CashCurrency:       trn.CashCurrency,
		TradeCashRate:      trn.TradeCashRate,
		TradeBaseRate:      trn.TradeBaseRate,
		TradePortfolioRate: trn.TradePortfolioRate,
		TradeDate:          trn.TradeDate.Format(dateLayout),
		SettleDate:         settleDate,
		Comments:           trn.Comments,
		Version:            trn.Version,
	}
}
