// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/go-petr/ledger/pkg/errorspkg"
	"github.com/go-petr/ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, title, kind, value, category string) (domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, pageID, pageSize int32) (domain.TransactionPage, error)
}

// Importer provides bulk import interface needed by transaction delivery layer.
type Importer interface {
	Import(ctx context.Context, filePath string) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service   Service
	importer  Importer
	uploadDir string
}

// NewHandler returns transaction handler.
func NewHandler(ts Service, imp Importer, uploadDir string) *Handler {
	return &Handler{
		service:   ts,
		importer:  imp,
		uploadDir: uploadDir,
	}
}

func bindErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"omitempty,min=1"`
	PageSize int32 `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type listData struct {
	Transactions []domain.Transaction `json:"transactions"`
	Balance      domain.Balance       `json:"balance"`
}

type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list transactions with the derived balance.
// The total transaction count travels in the X-Total-Count header.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	if req.PageID == 0 {
		req.PageID = 1
	}

	if req.PageSize == 0 {
		req.PageSize = 10
	}

	page, err := h.service.List(ctx, req.PageID, req.PageSize)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.Header("X-Total-Count", strconv.FormatInt(page.TotalCount, 10))

	res := listResponse{
		Data: listData{
			Transactions: page.Transactions,
			Balance:      page.Balance,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type createRequest struct {
	Title    string `json:"title" binding:"required"`
	Kind     string `json:"kind" binding:"required,kind"`
	Value    string `json:"value" binding:"required"`
	Category string `json:"category" binding:"required"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to create a transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	created, err := h.service.Create(ctx, req.Title, req.Kind, req.Value, req.Category)
	if err != nil {
		switch err {
		case domain.ErrInsufficientFunds:
			gctx.JSON(http.StatusPaymentRequired, web.Error(err))
			return
		case domain.ErrInvalidKind, domain.ErrInvalidValue:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{created},
	}

	gctx.JSON(http.StatusOK, res)
}

type deleteRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Delete handles http request to delete a transaction.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req deleteRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindErrorMsg(err)})

		return
	}

	if err := h.service.Delete(ctx, req.ID); err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Status(http.StatusNoContent)
}

type importData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type importResponse struct {
	Data importData `json:"data,omitempty"`
}

// Import handles http request to bulk import transactions from an uploaded
// CSV file. The upload is staged to the configured directory and removed by
// the engine once the batch is persisted.
func (h *Handler) Import(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	file, err := gctx.FormFile("file")
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	dst := filepath.Join(h.uploadDir, uuid.NewString()+".csv")

	if err := gctx.SaveUploadedFile(file, dst); err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	transactions, err := h.importer.Import(ctx, dst)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	res := importResponse{
		Data: importData{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}
