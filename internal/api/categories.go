package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/caixa/internal/model"
)

const (
	msgCategoryCreated   = "Categoria adicionada com sucesso"
	msgCategoriesListed  = "Categorias recuperadas com sucesso"
	msgCategoryFound     = "Categoria recuperada com sucesso"
	msgCategoryUpdated   = "Categoria atualizada com sucesso"
	msgCategoryRemoved   = "Categoria removida com sucesso"
	msgCategoryNotFound  = "Não foi encontrada nenhuma categoria para o ID informado"
	msgCategoryNotRemove = "Não foi possível remover a categoria, pois não existe categoria com o id informado"
	msgTypeNotFound      = "Não foi encontrado nenhum tipo de transação para o ID informado"
	msgTypesListed       = "Tipos de transação recuperados com sucesso"
)

// CategoryService is the ledger surface the category handlers need.
type CategoryService interface {
	Store(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	Index(ctx context.Context, filter model.CategoryFilter) ([]model.Category, error)
	IndexByID(ctx context.Context, id int64) (*model.Category, error)
	Update(ctx context.Context, id int64, patch model.CategoryPatch) (*model.Category, error)
	Remove(ctx context.Context, id int64) (int64, error)
	Types(ctx context.Context) ([]model.TransactionType, error)
}

type typeRef struct {
	Nome string `json:"nome" validate:"required"`
}

type createCategoryRequest struct {
	Descricao *string    `json:"descricao" validate:"omitempty,max=255"`
	Tipos     *[]typeRef `json:"tipos" validate:"omitempty,dive"`
	Nome      string     `json:"nome" validate:"required,max=100"`
}

type updateCategoryRequest struct {
	Nome      *string    `json:"nome" validate:"omitempty,max=100"`
	Descricao *string    `json:"descricao" validate:"omitempty,max=255"`
	Tipos     *[]typeRef `json:"tipos" validate:"omitempty,dive"`
}

type listCategoriesQuery struct {
	Tipo *int64 `form:"tipo" validate:"omitempty,gt=0"`
}

// TypeResponse is the wire form of a transaction type.
type TypeResponse struct {
	Nome string `json:"nome"`
	ID   int64  `json:"id"`
}

// CategoryResponse is the wire form of a category.
type CategoryResponse struct {
	CriadoEm     time.Time      `json:"criado_em"`
	AtualizadoEm time.Time      `json:"atualizado_em"`
	Descricao    *string        `json:"descricao"`
	Nome         string         `json:"nome"`
	Tipos        []TypeResponse `json:"tipos"`
	ID           int64          `json:"id"`
}

func newTypeResponse(t model.TransactionType) TypeResponse {
	return TypeResponse{ID: t.ID, Nome: t.Name}
}

func newCategoryResponse(c *model.Category) CategoryResponse {
	tipos := make([]TypeResponse, 0, len(c.Types))
	for _, t := range c.Types {
		tipos = append(tipos, newTypeResponse(t))
	}
	return CategoryResponse{
		ID:           c.ID,
		Nome:         c.Name,
		Descricao:    c.Description,
		Tipos:        tipos,
		CriadoEm:     c.CreatedAt,
		AtualizadoEm: c.UpdatedAt,
	}
}

func typeDescriptors(refs *[]typeRef) *[]model.TypeDescriptor {
	if refs == nil {
		return nil
	}
	descriptors := make([]model.TypeDescriptor, 0, len(*refs))
	for _, r := range *refs {
		descriptors = append(descriptors, model.TypeDescriptor{Name: r.Nome})
	}
	return &descriptors
}

type categoryHandler struct {
	service CategoryService
}

func (h *categoryHandler) create(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.service.Store(c.Request.Context(), model.CategoryInput{
		Name:        req.Nome,
		Description: req.Descricao,
		Types:       typeDescriptors(req.Tipos),
	})
	if err != nil {
		respondWithServiceError(c, err, msgCategoryNotFound)
		return
	}

	RespondWithData(c, http.StatusCreated, msgCategoryCreated, newCategoryResponse(category))
}

func (h *categoryHandler) list(c *gin.Context) {
	var q listCategoriesQuery
	if !bindQuery(c, &q) {
		return
	}

	categories, err := h.service.Index(c.Request.Context(), model.CategoryFilter{TypeID: q.Tipo})
	if err != nil {
		respondWithServiceError(c, err, msgTypeNotFound)
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, newCategoryResponse(&categories[i]))
	}
	RespondWithData(c, http.StatusOK, msgCategoriesListed, resp)
}

func (h *categoryHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	category, err := h.service.IndexByID(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, msgCategoryNotFound)
		return
	}

	RespondWithData(c, http.StatusOK, msgCategoryFound, newCategoryResponse(category))
}

func (h *categoryHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.service.Update(c.Request.Context(), id, model.CategoryPatch{
		Name:        req.Nome,
		Description: req.Descricao,
		Types:       typeDescriptors(req.Tipos),
	})
	if err != nil {
		respondWithServiceError(c, err, msgCategoryNotFound)
		return
	}

	RespondWithData(c, http.StatusOK, msgCategoryUpdated, newCategoryResponse(category))
}

func (h *categoryHandler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, msgCategoryNotRemove)
		return
	}
	if removed == 0 {
		RespondWithError(c, http.StatusNotFound, msgCategoryNotRemove)
		return
	}

	RespondWithData(c, http.StatusOK, msgCategoryRemoved, gin.H{"removidas": removed})
}

func (h *categoryHandler) types(c *gin.Context) {
	types, err := h.service.Types(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err, msgTypeNotFound)
		return
	}

	resp := make([]TypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, newTypeResponse(t))
	}
	RespondWithData(c, http.StatusOK, msgTypesListed, resp)
}
