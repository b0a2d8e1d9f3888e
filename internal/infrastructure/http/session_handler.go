package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-wizard/internal/application/payment"
	"booking-wizard/internal/application/verification"
	"booking-wizard/internal/application/wizard"
	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/infrastructure/catalogclient"
)

type SessionHandler struct {
	wizard   *wizard.Service
	payments *payment.Service
	catalog  *catalogclient.Store
}

func NewSessionHandler(w *wizard.Service, p *payment.Service, c *catalogclient.Store) *SessionHandler {
	return &SessionHandler{
		wizard:   w,
		payments: p,
		catalog:  c,
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	snap, err := h.wizard.StartSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, snap)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	snap, err := h.wizard.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) UpdateForm(c *gin.Context) {
	var patch booking.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.wizard.UpdateForm(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) NextStep(c *gin.Context) {
	snap, err := h.wizard.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) PreviousStep(c *gin.Context) {
	snap, err := h.wizard.Retreat(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) ResetSession(c *gin.Context) {
	snap, err := h.wizard.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

type otpSendRequest struct {
	Resend        bool `json:"resend"`
	ToggleChannel bool `json:"toggle_channel"`
}

func (h *SessionHandler) SendOTP(c *gin.Context) {
	var req otpSendRequest
	// An empty body means a first send
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	id := c.Param("id")

	var snap *wizard.Snapshot
	var err error
	switch {
	case req.ToggleChannel:
		snap, err = h.wizard.ToggleVerificationChannel(ctx, id)
	case req.Resend:
		snap, err = h.wizard.ResendOTP(ctx, id)
	default:
		snap, err = h.wizard.StartVerification(ctx, id)
	}
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

type otpVerifyRequest struct {
	Code string `json:"code"`
}

func (h *SessionHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.wizard.SubmitOTP(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

type paymentRequest struct {
	Outcome string `json:"outcome"`
}

func (h *SessionHandler) ProcessPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.payments.Process(c.Request.Context(), c.Param("id"), req.Outcome)
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) RetryPayment(c *gin.Context) {
	snap, err := h.wizard.RetryPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, snap, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) GetCatalog(c *gin.Context) {
	cat := h.catalog.Catalog()
	if cat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog":  cat,
		"fallback": h.catalog.UsingFallback(),
	})
}

type catalogReloadRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *SessionHandler) ReloadCatalog(c *gin.Context) {
	var req catalogReloadRequest
	_ = c.ShouldBindJSON(&req)

	// A fetch failure degrades to the fallback; the wizard stays usable
	_ = h.catalog.Reload(c.Request.Context(), req.Endpoint)

	c.JSON(http.StatusOK, gin.H{"fallback": h.catalog.UsingFallback()})
}

// renderError maps core errors onto HTTP statuses. Validation failures carry
// the snapshot so the client can render field-local errors.
func (h *SessionHandler) renderError(c *gin.Context, snap *wizard.Snapshot, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrValidationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "session": snap})
	case errors.Is(err, verification.ErrResendNotReady):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "session": snap})
	case errors.Is(err, verification.ErrNotStarted),
		errors.Is(err, verification.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": snap})
	case errors.Is(err, wizard.ErrRequiredComponent),
		errors.Is(err, wizard.ErrRequiredInsurance),
		errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrTerminalState),
		errors.Is(err, wizard.ErrOverlayNotRaised),
		errors.Is(err, wizard.ErrNotAtVerification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": snap})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
