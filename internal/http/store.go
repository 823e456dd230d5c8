package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/database/cases"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

// CaseStore persists complete bundles.
type CaseStore interface {
	SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error)
	GetByNumber(ctx context.Context, number string) (*entities.Case, error)
	CaseCounter
}

// StoreController lets this binary act as its own persistence backend.
type StoreController struct {
	store CaseStore
}

func NewStoreController(store CaseStore) *StoreController {
	return &StoreController{store: store}
}

// SaveComplete writes a case with all of its documents and events.
// A duplicate case number answers 200 with sucesso=false.
// POST /processos/salvar-completo
func (sc *StoreController) SaveComplete(c *gin.Context) {
	var req entities.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := sc.store.SaveComplete(c.Request.Context(), req)
	if errors.Is(err, cases.ErrMissingNumber) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "save complete")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCase returns a stored case.
// GET /processos/:numero
func (sc *StoreController) GetCase(c *gin.Context) {
	record, err := sc.store.GetByNumber(c.Request.Context(), c.Param("numero"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "processo")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get case")
		return
	}
	c.JSON(http.StatusOK, record)
}
