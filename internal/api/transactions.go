package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/caixa/internal/model"
)

const dateLayout = "2006-01-02"

const (
	msgTransactionCreated   = "Transação adicionada com sucesso"
	msgTransactionsListed   = "Transações recuperadas com sucesso"
	msgTransactionFound     = "Transação recuperada com sucesso"
	msgTransactionUpdated   = "Transação atualizada com sucesso"
	msgTransactionRemoved   = "Transação removida com sucesso"
	msgTransactionsEmpty    = "Não foi possível recuperar as transações, pois não existem registros na base de dados"
	msgTransactionNotFound  = "Não foi encontrada nenhuma transação para o ID informado"
	msgTransactionNotRemove = "Não foi possível remover a transação, pois não existe transação com o id informado"
)

// TransactionService is the ledger surface the transaction handlers need.
type TransactionService interface {
	Store(ctx context.Context, in model.NewTransaction) (*model.Transaction, error)
	Index(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error)
	IndexByPK(ctx context.Context, id int64) (*model.Transaction, error)
	Update(ctx context.Context, id int64, patch model.TransactionPatch) (*model.Transaction, error)
	Remove(ctx context.Context, id int64) (int64, error)
}

type categoryRef struct {
	Descricao *string `json:"descricao"`
	Nome      string  `json:"nome" validate:"required"`
}

type createTransactionRequest struct {
	Valor           *decimal.Decimal `json:"valor" validate:"required,gte=0"`
	Categoria       *categoryRef     `json:"categoria" validate:"required"`
	CategoriaID     *int64           `json:"categoria_id" validate:"omitempty,gt=0"`
	DataVencimento  string           `json:"data_vencimento" validate:"required,datetime=2006-01-02"`
	Situacao        string           `json:"situacao" validate:"omitempty,oneof=pending settled"`
	Observacao      string           `json:"observacao" validate:"max=500"`
	TipoTransacaoID int64            `json:"tipo_transacao_id" validate:"required,gt=0"`
}

type updateTransactionRequest struct {
	Valor           *decimal.Decimal `json:"valor" validate:"omitempty,gte=0"`
	CategoriaID     *int64           `json:"categoria_id" validate:"omitempty,gt=0"`
	DataVencimento  *string          `json:"data_vencimento" validate:"omitempty,datetime=2006-01-02"`
	Situacao        *string          `json:"situacao" validate:"omitempty,oneof=pending settled"`
	Observacao      *string          `json:"observacao" validate:"omitempty,max=500"`
	TipoTransacaoID *int64           `json:"tipo_transacao_id" validate:"omitempty,gt=0"`
}

type listTransactionsQuery struct {
	CategoriaID     *int64  `form:"categoria_id" validate:"omitempty,gt=0"`
	TipoTransacaoID *int64  `form:"tipo_transacao_id" validate:"omitempty,gt=0"`
	Situacao        *string `form:"situacao" validate:"omitempty,oneof=pending settled"`
	Ano             *int    `form:"ano" validate:"omitempty,min=1970,max=9999"`
	Mes             *int    `form:"mes" validate:"omitempty,min=1,max=12"`
}

// TransactionResponse is the wire form of a transaction.
type TransactionResponse struct {
	CriadoEm        time.Time         `json:"criado_em"`
	AtualizadoEm    time.Time         `json:"atualizado_em"`
	Categoria       *CategoryResponse `json:"categoria,omitempty"`
	TipoTransacao   *TypeResponse     `json:"tipo_transacao,omitempty"`
	CategoriaID     *int64            `json:"categoria_id"`
	Valor           decimal.Decimal   `json:"valor"`
	DataVencimento  string            `json:"data_vencimento"`
	Situacao        string            `json:"situacao"`
	Observacao      string            `json:"observacao"`
	ID              int64             `json:"id"`
	TipoTransacaoID int64             `json:"tipo_transacao_id"`
}

func newTransactionResponse(t *model.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		Valor:           t.Amount,
		DataVencimento:  t.DueDate.Format(dateLayout),
		Situacao:        string(t.Status),
		Observacao:      t.Notes,
		CategoriaID:     t.CategoryID,
		TipoTransacaoID: t.TypeID,
		CriadoEm:        t.CreatedAt,
		AtualizadoEm:    t.UpdatedAt,
	}
	if t.Category != nil {
		c := newCategoryResponse(t.Category)
		resp.Categoria = &c
	}
	if t.Type != nil {
		tt := newTypeResponse(*t.Type)
		resp.TipoTransacao = &tt
	}
	return resp
}

type transactionHandler struct {
	service TransactionService
}

func (h *transactionHandler) create(c *gin.Context) {
	var req createTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	// Already checked by the datetime rule.
	dueDate, _ := time.Parse(dateLayout, req.DataVencimento)

	in := model.NewTransaction{
		Amount:     *req.Valor,
		DueDate:    dueDate,
		Status:     model.TransactionStatus(req.Situacao),
		Notes:      req.Observacao,
		TypeID:     req.TipoTransacaoID,
		CategoryID: req.CategoriaID,
		Category: &model.CategoryDescriptor{
			Name:        req.Categoria.Nome,
			Description: req.Categoria.Descricao,
		},
	}

	txn, err := h.service.Store(c.Request.Context(), in)
	if err != nil {
		respondWithServiceError(c, err, msgTransactionNotFound)
		return
	}

	RespondWithData(c, http.StatusCreated, msgTransactionCreated, newTransactionResponse(txn))
}

func (h *transactionHandler) list(c *gin.Context) {
	var q listTransactionsQuery
	if !bindQuery(c, &q) {
		return
	}

	query := model.TransactionQuery{
		CategoryID: q.CategoriaID,
		TypeID:     q.TipoTransacaoID,
		Year:       q.Ano,
		Month:      q.Mes,
	}
	if q.Situacao != nil {
		status := model.TransactionStatus(*q.Situacao)
		query.Status = &status
	}

	txns, err := h.service.Index(c.Request.Context(), query)
	if err != nil {
		respondWithServiceError(c, err, msgTransactionsEmpty)
		return
	}
	if len(txns) == 0 {
		RespondWithError(c, http.StatusNotFound, msgTransactionsEmpty)
		return
	}

	resp := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		resp = append(resp, newTransactionResponse(&txns[i]))
	}
	RespondWithData(c, http.StatusOK, msgTransactionsListed, resp)
}

func (h *transactionHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	txn, err := h.service.IndexByPK(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, msgTransactionNotFound)
		return
	}

	RespondWithData(c, http.StatusOK, msgTransactionFound, newTransactionResponse(txn))
}

func (h *transactionHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := model.TransactionPatch{
		Amount:     req.Valor,
		Notes:      req.Observacao,
		CategoryID: req.CategoriaID,
		TypeID:     req.TipoTransacaoID,
	}
	if req.DataVencimento != nil {
		dueDate, _ := time.Parse(dateLayout, *req.DataVencimento)
		patch.DueDate = &dueDate
	}
	if req.Situacao != nil {
		status := model.TransactionStatus(*req.Situacao)
		patch.Status = &status
	}

	txn, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondWithServiceError(c, err, msgTransactionNotFound)
		return
	}

	RespondWithData(c, http.StatusOK, msgTransactionUpdated, newTransactionResponse(txn))
}

func (h *transactionHandler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, msgTransactionNotRemove)
		return
	}
	if removed == 0 {
		RespondWithError(c, http.StatusNotFound, msgTransactionNotRemove)
		return
	}

	RespondWithData(c, http.StatusOK, msgTransactionRemoved, gin.H{"removidas": removed})
}
