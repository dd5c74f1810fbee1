// Package bookinghttp exposes booking and proposal editing sessions as JSON endpoints.
package bookinghttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/oohdesk/oohdesk/internal/booking"
	"github.com/oohdesk/oohdesk/internal/inventory"
	"github.com/oohdesk/oohdesk/internal/platform/httpx"
	"github.com/oohdesk/oohdesk/internal/pricing"
	"github.com/oohdesk/oohdesk/internal/selection"
)

// Sessions manages editing sessions.
type Sessions interface {
	Create(ctx context.Context, ctxType pricing.Context) (*selection.Session, error)
	Get(ctx context.Context, id string) (*selection.Session, error)
	Close(ctx context.Context, id string) error
}

// Inventory serves the inventory feed.
type Inventory interface {
	Get(ctx context.Context, id string) (inventory.Record, error)
	List(ctx context.Context, filter inventory.Filter) ([]inventory.Record, error)
	Instantiate(ctx context.Context, id string, ctxType pricing.Context) (pricing.LineItem, inventory.Record, error)
}

// Submitter runs the submission boundary.
type Submitter interface {
	Check(ctx context.Context, sessionID string) ([]booking.Warning, error)
	Submit(ctx context.Context, sessionID string, opts booking.SubmitOptions) (booking.Result, error)
}

// SubmissionObserver counts submission outcomes.
type SubmissionObserver interface {
	ObserveSubmission(ctxType, outcome string)
}

// Handler serves the drawer API.
type Handler struct {
	logger    *slog.Logger
	sessions  Sessions
	editor    *selection.Editor
	inventory Inventory
	submitter Submitter
	observer  SubmissionObserver
	validator *validator.Validate
}

// Config groups handler dependencies.
type Config struct {
	Logger    *slog.Logger
	Sessions  Sessions
	Editor    *selection.Editor
	Inventory Inventory
	Submitter Submitter
	Observer  SubmissionObserver
}

// NewHandler builds Handler instance.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	editor := cfg.Editor
	if editor == nil {
		editor = selection.NewEditor(pricing.NewEngine(nil))
	}
	return &Handler{
		logger:    logger,
		sessions:  cfg.Sessions,
		editor:    editor,
		inventory: cfg.Inventory,
		submitter: cfg.Submitter,
		observer:  cfg.Observer,
		validator: validator.New(),
	}
}

// MountRoutes registers session and inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventories", h.listInventories)
	r.Get("/inventories/{inventoryID}", h.showInventory)

	r.Post("/sessions", h.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.showSession)
		r.Delete("/", h.cancelSession)
		r.Get("/summary", h.summary)
		r.Get("/check", h.check)
		r.Post("/submit", h.submit)

		r.Post("/items", h.addItem)
		r.Delete("/items/{itemID}", h.removeItem)
		r.Patch("/items/{itemID}", h.editItem)
		r.Post("/items/{itemID}/open", h.openItem)
		r.Put("/items/{itemID}/flags", h.setFlags)
	})
}

type createSessionRequest struct {
	Context string `json:"context" validate:"required,oneof=bookings proposal"`
}

type addItemRequest struct {
	InventoryID string `json:"inventoryId" validate:"required,max=64"`
	Unit        *int   `json:"unit,omitempty" validate:"omitempty,min=0"`
	InitialUnit int    `json:"initialUnit,omitempty" validate:"min=0"`
}

type editItemRequest struct {
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

type submitRequest struct {
	AcknowledgeWarnings bool `json:"acknowledgeWarnings"`
}

type sessionResponse struct {
	ID        string             `json:"id"`
	Context   pricing.Context    `json:"type"`
	CreatedAt time.Time          `json:"createdAt"`
	Items     []pricing.LineItem `json:"items"`
}

type editResponse struct {
	Patch pricing.Patch    `json:"patch"`
	Item  pricing.LineItem `json:"item"`
}

type inventoryResponse struct {
	inventory.Record
	AvailableUnits int `json:"availableUnits"`
}

func (h *Handler) listInventories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := inventory.Filter{City: strings.TrimSpace(q.Get("city")), Search: strings.TrimSpace(q.Get("q"))}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	records, err := h.inventory.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []inventory.Record{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inventories": records})
}

func (h *Handler) showInventory(w http.ResponseWriter, r *http.Request) {
	rec, err := h.inventory.Get(r.Context(), chi.URLParam(r, "inventoryID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	start := pricing.ParseDate(r.URL.Query().Get("startDate"))
	end := pricing.ParseDate(r.URL.Query().Get("endDate"))
	httpx.JSON(w, http.StatusOK, inventoryResponse{Record: rec, AvailableUnits: rec.AvailableUnits(start, end)})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.sessions.Create(r.Context(), pricing.Context(req.Context))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (h *Handler) showSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, booking.Summarize(sess.Context, sess.Store.Get()))
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.submitter.Check(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if warnings == nil {
		warnings = []booking.Warning{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	ctxType := ""
	if sess, err := h.sessions.Get(r.Context(), id); err == nil {
		ctxType = string(sess.Context)
	}
	res, err := h.submitter.Submit(r.Context(), id, booking.SubmitOptions{AcknowledgeWarnings: req.AcknowledgeWarnings})
	switch {
	case errors.Is(err, booking.ErrBlocked):
		h.observe(ctxType, "blocked")
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"title":    "Submission Blocked",
			"status":   http.StatusUnprocessableEntity,
			"warnings": res.Warnings,
		})
		return
	case err != nil:
		h.observe(ctxType, "failed")
		h.respondError(w, r, err)
		return
	case !res.Submitted:
		h.observe(ctxType, "held")
		httpx.JSON(w, http.StatusConflict, res)
		return
	}
	h.observe(ctxType, "enqueued")
	httpx.JSON(w, http.StatusAccepted, res)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, _, err := h.inventory.Instantiate(r.Context(), req.InventoryID, sess.Context)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	item.InitialUnit = req.InitialUnit
	item, added := h.editor.Add(sess.Store, item)
	if !added {
		httpx.Problem(w, http.StatusConflict, "Duplicate", fmt.Sprintf("inventory %s already selected", item.ID))
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.editor.Deselect(sess.Store, chi.URLParam(r, "itemID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) openItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seed, err := h.editor.Open(sess.Store, chi.URLParam(r, "itemID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, seed)
}

func (h *Handler) editItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req editItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	field := pricing.Field(req.Field)
	if !field.Editable() {
		httpx.ValidationProblem(w, map[string]string{"field": fmt.Sprintf("%s is not editable", req.Field)})
		return
	}
	patch, item, err := h.editor.Edit(sess.Store, chi.URLParam(r, "itemID"), field, req.Value)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, editResponse{Patch: patch, Item: item})
}

func (h *Handler) setFlags(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selection.Flags
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.editor.SetFlags(sess.Store, chi.URLParam(r, "itemID"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*selection.Session, bool) {
	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = fmt.Sprintf("failed %s", fe.Tag())
		}
		httpx.ValidationProblem(w, fields)
		return false
	}
	return true
}

func (h *Handler) observe(ctxType, outcome string) {
	if h.observer != nil {
		h.observer.ObserveSubmission(ctxType, outcome)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, selection.ErrSessionNotFound),
		errors.Is(err, selection.ErrItemNotFound),
		errors.Is(err, inventory.ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, selection.ErrInvalidContext):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, booking.ErrEmptySelection):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnprocessable, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
	default:
		h.logger.Error("booking api", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func toSessionResponse(sess *selection.Session) sessionResponse {
	items := sess.Store.Get()
	if items == nil {
		items = []pricing.LineItem{}
	}
	return sessionResponse{ID: sess.ID, Context: sess.Context, CreatedAt: sess.CreatedAt, Items: items}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
