package handlers

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/controlfin/backend/internal/models"
	"github.com/controlfin/backend/internal/services"
)

// dateLayout is the fixed day-month-year wire pattern for entry dates.
const dateLayout = "02-01-2006"

type EntryHandler struct {
	service   *services.EntryService
	validator *services.ValidationHelper
}

// EntryRequest is the wire shape of an entry. The date pattern is
// checked here, before the service is invoked; the amount is a decimal
// number rounded to two fractional digits on the way in.
type EntryRequest struct {
	Name       string  `json:"name" validate:"required" example:"Pizza"`
	AccountID  string  `json:"account_id" validate:"required"`
	CategoryID string  `json:"category_id" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=02-01-2006" example:"03-05-2024"`
	Amount     float64 `json:"amount" example:"10.00"`
	Paid       bool    `json:"paid"`
}

// EntryResponse mirrors EntryRequest with the store-assigned id.
type EntryResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AccountID  string  `json:"account_id"`
	CategoryID string  `json:"category_id"`
	Date       string  `json:"date" example:"03-05-2024"`
	Amount     float64 `json:"amount" example:"10.00"`
	Paid       bool    `json:"paid"`
}

// EntryDetailResponse carries the denormalized account and category
// names for display.
type EntryDetailResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AccountName  string  `json:"account_name"`
	CategoryName string  `json:"category_name"`
	Date         string  `json:"date" example:"03-05-2024"`
	Amount       float64 `json:"amount" example:"10.00"`
	Paid         bool    `json:"paid"`
}

func NewEntryHandler(service *services.EntryService) *EntryHandler {
	return &EntryHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

func toEntryResponse(entry *models.Entry) EntryResponse {
	return EntryResponse{
		ID:         entry.ID,
		Name:       entry.Name,
		AccountID:  entry.AccountID,
		CategoryID: entry.CategoryID,
		Date:       entry.Date.Format(dateLayout),
		Amount:     float64(entry.Amount) / 100,
		Paid:       entry.Paid,
	}
}

func toEntryResponses(entries []models.Entry) []EntryResponse {
	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toEntryResponse(&entries[i]))
	}
	return responses
}

func (req *EntryRequest) toInput() services.EntryInput {
	date, _ := time.Parse(dateLayout, req.Date) // pattern already validated
	return services.EntryInput{
		Name:       req.Name,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Date:       date,
		Amount:     int64(math.Round(req.Amount * 100)),
		Paid:       req.Paid,
	}
}

// ListEntries returns all entries of the authenticated user
// @Summary List entries
// @Description Return every entry owned by the authenticated user
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EntryResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /entries [get]
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entries, err := h.service.ListAll(login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponses(entries))
}

// ListEntriesDetailed returns the detailed projection of all entries
// @Summary List entries with account and category names
// @Description Return every entry of the authenticated user with the account and category names joined in
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EntryDetailResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /entries/detailed [get]
func (h *EntryHandler) ListEntriesDetailed(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	details, err := h.service.ListAllDetailed(login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	responses := make([]EntryDetailResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, EntryDetailResponse{
			ID:           detail.ID,
			Name:         detail.Name,
			AccountName:  detail.AccountName,
			CategoryName: detail.CategoryName,
			Date:         detail.Date.Format(dateLayout),
			Amount:       float64(detail.Amount) / 100,
			Paid:         detail.Paid,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// ListEntriesByPeriod returns the entries of one YYYYMM period
// @Summary List entries by period
// @Description Return the entries of the given period, an integer formatted YYYYMM (e.g. 202405)
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Param period path int true "Period as YYYYMM"
// @Success 200 {array} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /entries/period/{period} [get]
func (h *EntryHandler) ListEntriesByPeriod(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	period, err := strconv.Atoi(chi.URLParam(r, "period"))
	if err != nil {
		services.SendErrorResponse(w, "Competência deve ser um número no formato AAAAMM.", http.StatusBadRequest, nil)
		return
	}

	entries, err := h.service.ListByPeriod(period, login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponses(entries))
}

// GetEntry returns one entry by id
// @Summary Get entry
// @Description Return a single entry; fails when it does not exist or belongs to another user
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 200 {object} EntryResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /entries/{entryId} [get]
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entry, err := h.service.GetByID(chi.URLParam(r, "entryId"), login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// CreateEntry registers a new entry
// @Summary Create entry
// @Description Create an entry referencing one of the user's accounts and categories
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body EntryRequest true "Entry data"
// @Success 201 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /entries [post]
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req EntryRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	entry, err := h.service.Create(req.toInput(), login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// UpdateEntry overwrites an entry's mutable fields
// @Summary Update entry
// @Description Update an entry; account, category and entry must all belong to the user
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Param entry body EntryRequest true "Entry data"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /entries/{entryId} [put]
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req EntryRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	entry, err := h.service.Update(chi.URLParam(r, "entryId"), req.toInput(), login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// MarkEntryPaid marks an entry as paid
// @Summary Mark entry as paid
// @Description Set the paid flag; fails when the entry is already paid
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /entries/{entryId}/paid [put]
func (h *EntryHandler) MarkEntryPaid(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entry, err := h.service.MarkPaid(chi.URLParam(r, "entryId"), login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// MarkEntryUnpaid marks an entry as not paid
// @Summary Mark entry as not paid
// @Description Clear the paid flag; fails when the entry is already unpaid
// @Tags entries
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /entries/{entryId}/unpaid [put]
func (h *EntryHandler) MarkEntryUnpaid(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entry, err := h.service.MarkUnpaid(chi.URLParam(r, "entryId"), login)
	if err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// DeleteEntry removes an entry
// @Summary Delete entry
// @Description Remove an entry; entries are leaves, so no reference guard applies
// @Tags entries
// @Security BearerAuth
// @Param entryId path string true "Entry ID"
// @Success 204
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /entries/{entryId} [delete]
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	login, ok := principal(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := h.service.Delete(chi.URLParam(r, "entryId"), login); err != nil {
		services.SendDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
