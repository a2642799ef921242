// Package httptransport exposes the application over HTTP with cookie
// sessions.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	appAdmin "medicart/internal/application/admin"
	appCart "medicart/internal/application/cart"
	appOrder "medicart/internal/application/order"
	appUser "medicart/internal/application/user"
	domCart "medicart/internal/domain/cart"
	"medicart/internal/domain/catalog"
	domOrder "medicart/internal/domain/order"
	domUser "medicart/internal/domain/user"
	"medicart/internal/infrastructure/session"
	"medicart/internal/store"
	"medicart/internal/textextract"
)

const sessionCookie = "session_id"

type Handler struct {
	users     *appUser.Service
	carts     *appCart.Service
	orders    *appOrder.Service
	admin     *appAdmin.Service
	sessions  session.Store
	extractor textextract.Extractor
}

func NewHandler(
	users *appUser.Service,
	carts *appCart.Service,
	orders *appOrder.Service,
	admin *appAdmin.Service,
	sessions session.Store,
	extractor textextract.Extractor,
) *Handler {
	return &Handler{
		users:     users,
		carts:     carts,
		orders:    orders,
		admin:     admin,
		sessions:  sessions,
		extractor: extractor,
	}
}

// Router wires all routes. Middleware is registered on the router itself so
// route templates are available for metric labels.
func (h *Handler) Router(middleware ...mux.MiddlewareFunc) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware...)

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/medicines", h.handleListMedicines).Methods(http.MethodGet)

	user := r.NewRoute().Subrouter()
	user.Use(h.authenticate)
	user.HandleFunc("/cart", h.handleGetCart).Methods(http.MethodGet)
	user.HandleFunc("/cart/items", h.handleAddToCart).Methods(http.MethodPost)
	user.HandleFunc("/cart/items/{name}", h.handleUpdateCartItem).Methods(http.MethodPut)
	user.HandleFunc("/cart/items/{name}", h.handleRemoveCartItem).Methods(http.MethodDelete)
	user.HandleFunc("/orders", h.handlePlaceOrder).Methods(http.MethodPost)
	user.HandleFunc("/orders", h.handleListOrders).Methods(http.MethodGet)
	user.HandleFunc("/orders/{id}/cancel", h.handleCancelOrder).Methods(http.MethodPost)
	user.HandleFunc("/orders/{id}/arrival", h.handleArrival).Methods(http.MethodGet)
	user.HandleFunc("/prescriptions/extract", h.handleExtract).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.authenticate, h.requireAdmin)
	admin.HandleFunc("/medicines", h.handleAddMedicine).Methods(http.MethodPost)
	admin.HandleFunc("/medicines", h.handleListStock).Methods(http.MethodGet)
	admin.HandleFunc("/medicines/{name}", h.handleRemoveMedicine).Methods(http.MethodDelete)
	admin.HandleFunc("/medicines/{name}/restock", h.handleRestock).Methods(http.MethodPost)
	admin.HandleFunc("/orders", h.handleListAllOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", h.handleUpdateStatus).Methods(http.MethodPut)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.users.Register(r.Context(), req.Username, req.Password, req.Address); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// Do not reveal whether the username exists.
		if errors.Is(err, domUser.ErrNotFound) {
			err = domUser.ErrUnauthorized
		}
		writeDomainError(w, err)
		return
	}

	sid := uuid.NewString()
	if err := h.sessions.Put(r.Context(), sid, u.Username); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(session.TTL),
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"username": u.Username, "admin": u.Admin})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		_ = h.sessions.Delete(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.admin.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, medicines)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	contents, err := h.carts.Contents(r.Context(), usernameFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

type cartItemRequest struct {
	Medicine string `json:"medicine"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.carts.AddItem(r.Context(), usernameFrom(r), req.Medicine, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := mux.Vars(r)["name"]
	if err := h.carts.SetQuantity(r.Context(), usernameFrom(r), name, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.carts.RemoveItem(r.Context(), usernameFrom(r), name); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type placeOrderRequest struct {
	Prescription string `json:"prescription"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	placed, err := h.orders.Place(r.Context(), usernameFrom(r), req.Prescription)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForUser(r.Context(), usernameFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderViews(orders))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	if err := h.orders.Cancel(r.Context(), usernameFrom(r), orderID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleArrival(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	at, err := h.orders.ArrivalDate(r.Context(), usernameFrom(r), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id":   orderID,
		"arrival_at": at.Format("2006-01-02 15:04:05"),
	})
}

type extractRequest struct {
	Text      string `json:"text"`
	AddToCart bool   `json:"add_to_cart"`
}

type extractResponse struct {
	Detected []string `json:"detected"`
	Added    []string `json:"added,omitempty"`
}

// handleExtract runs medicine-name detection over prescription text and,
// when asked, drops one unit of each detected medicine into the cart. An
// extractor failure degrades to no detections rather than an error.
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	allowed := make([]string, 0)
	if medicines, err := h.admin.ListStock(r.Context()); err == nil {
		for _, m := range medicines {
			allowed = append(allowed, m.Name)
		}
	}

	detected, err := h.extractor.Extract(r.Context(), req.Text, allowed)
	if err != nil {
		detected = nil
	}

	resp := extractResponse{Detected: detected}
	if req.AddToCart && len(detected) > 0 {
		added, err := h.carts.AddDetected(r.Context(), usernameFrom(r), detected)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp.Added = added
	}
	if resp.Detected == nil {
		resp.Detected = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type addMedicineRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func (h *Handler) handleAddMedicine(w http.ResponseWriter, r *http.Request) {
	var req addMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.admin.AddMedicine(r.Context(), req.Name, req.Price, req.Stock); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (h *Handler) handleListStock(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.admin.ListStock(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, medicines)
}

func (h *Handler) handleRemoveMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.RemoveMedicine(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.admin.Restock(r.Context(), mux.Vars(r)["name"], req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderViews(orders))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.admin.UpdateOrderStatus(r.Context(), mux.Vars(r)["id"], req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type orderView struct {
	OrderID    string         `json:"order_id"`
	Owner      string         `json:"owner"`
	Items      map[string]int `json:"items"`
	Status     string         `json:"status"`
	Total      float64        `json:"total"`
	DeliveryAt string         `json:"delivery_at"`
}

func orderViews(orders []domOrder.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{
			OrderID:    o.ID,
			Owner:      o.Owner,
			Items:      o.Items,
			Status:     string(o.Status),
			Total:      o.Total,
			DeliveryAt: o.DeliveryAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, domOrder.ErrNotFound),
		errors.Is(err, domCart.ErrNotFound),
		errors.Is(err, domUser.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, catalog.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, catalog.ErrInsufficientStock),
		errors.Is(err, domCart.ErrInvalidQuantity),
		errors.Is(err, domOrder.ErrEmptyCart),
		errors.Is(err, domOrder.ErrMissingPrescription),
		errors.Is(err, domOrder.ErrInvalidStatus),
		errors.Is(err, domUser.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domUser.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domOrder.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, catalog.ErrDuplicateName),
		errors.Is(err, domUser.ErrDuplicateName),
		errors.Is(err, domOrder.ErrInvalidState),
		errors.Is(err, domOrder.ErrTooLateToCancel):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrPersistence):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
