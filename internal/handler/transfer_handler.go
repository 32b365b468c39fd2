package handler

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hellouniverse/transfer-service/internal/ledger"
	"github.com/hellouniverse/transfer-service/internal/middleware"
	"github.com/hellouniverse/transfer-service/internal/transfer"
	"github.com/shopspring/decimal"
)

const sessionTokenTTL = time.Hour

// AuthorizerSession defines the state-machine operations used by TransferHandler.
type AuthorizerSession interface {
	Start() transfer.Snapshot
	Cancel()
	ResolveRecipient(ctx context.Context, tag string) error
	SetAmount(raw string) error
	SetMemo(text string) error
	AdvanceToConfirm(availableBalance decimal.Decimal) error
	Confirm() error
	Back() error
	SubmitPin(ctx context.Context, secret string) error
	Snapshot() transfer.Snapshot
}

// BalanceReader exposes the account context's available balance.
type BalanceReader interface {
	Balance() decimal.Decimal
}

// LedgerReader defines the read-side ledger operations used by TransferHandler.
type LedgerReader interface {
	Recent(n int) iter.Seq[ledger.Record]
	Len() int
}

type TransferHandler struct {
	session AuthorizerSession
	balance BalanceReader
	ledger  LedgerReader

	mu              sync.Mutex
	activeSessionID string
}

type ResolveRecipientRequest struct {
	PayTag string `json:"payTag" validate:"required"`
}

type UpdateDraftRequest struct {
	Amount *string `json:"amount"`
	Memo   *string `json:"memo"`
}

type SubmitPinRequest struct {
	Pin string `json:"pin" validate:"required,len=6,numeric"`
}

type StartSessionResponse struct {
	Token   string            `json:"token"`
	Session transfer.Snapshot `json:"session"`
}

type SessionResponse struct {
	Session transfer.Snapshot `json:"session"`
}

type SubmitPinResponse struct {
	Session     transfer.Snapshot `json:"session"`
	Transaction *ledger.Record    `json:"transaction,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []ledger.Record `json:"transactions"`
}

type ErrorResponse struct {
	Message           string            `json:"message"`
	Code              transfer.Code     `json:"code"`
	RemainingAttempts int               `json:"remainingAttempts,omitempty"`
	Session           transfer.Snapshot `json:"session"`
}

func NewTransferHandler(session AuthorizerSession, balance BalanceReader, led LedgerReader) *TransferHandler {
	return &TransferHandler{session: session, balance: balance, ledger: led}
}

// StartSession opens a fresh authorization session, implicitly cancelling
// any active one, and returns the token the remaining steps require.
func (h *TransferHandler) StartSession(c *gin.Context) {
	h.mu.Lock()
	h.activeSessionID = uuid.NewString()
	sessionID := h.activeSessionID
	h.mu.Unlock()

	snapshot := h.session.Start()
	token, err := middleware.IssueSessionToken(sessionID, sessionTokenTTL)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to start session")
		return
	}
	c.JSON(http.StatusCreated, StartSessionResponse{Token: token, Session: snapshot})
}

func (h *TransferHandler) ResolveRecipient(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	var req ResolveRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if err := h.session.ResolveRecipient(c.Request.Context(), req.PayTag); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.session.Snapshot()})
}

func (h *TransferHandler) UpdateDraft(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount != nil {
		if err := h.session.SetAmount(*req.Amount); err != nil {
			h.respondDomainError(c, err)
			return
		}
	}
	if req.Memo != nil {
		if err := h.session.SetMemo(*req.Memo); err != nil {
			h.respondDomainError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.session.Snapshot()})
}

func (h *TransferHandler) AdvanceToConfirm(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	if err := h.session.AdvanceToConfirm(h.balance.Balance()); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.session.Snapshot()})
}

func (h *TransferHandler) Confirm(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	if err := h.session.Confirm(); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.session.Snapshot()})
}

func (h *TransferHandler) Back(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	if err := h.session.Back(); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: h.session.Snapshot()})
}

func (h *TransferHandler) SubmitPin(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	var req SubmitPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if err := h.session.SubmitPin(c.Request.Context(), req.Pin); err != nil {
		h.respondDomainError(c, err)
		return
	}

	resp := SubmitPinResponse{Session: h.session.Snapshot()}
	for rec := range h.ledger.Recent(1) {
		resp.Transaction = &rec
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransferHandler) CancelSession(c *gin.Context) {
	if !h.requireActiveSession(c) {
		return
	}
	h.session.Cancel()
	h.mu.Lock()
	h.activeSessionID = ""
	h.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// ListTransactions returns the most recent ledger records, newest first.
func (h *TransferHandler) ListTransactions(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	records := make([]ledger.Record, 0, limit)
	for rec := range h.ledger.Recent(limit) {
		records = append(records, rec)
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: records})
}

// requireActiveSession rejects requests carrying a token for a session that
// has since been replaced or cancelled.
func (h *TransferHandler) requireActiveSession(c *gin.Context) bool {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Session token required")
		return false
	}
	h.mu.Lock()
	active := h.activeSessionID
	h.mu.Unlock()
	if sessionID != active {
		middleware.RespondWithError(c, http.StatusConflict, "Session is no longer active")
		return false
	}
	return true
}

func (h *TransferHandler) respondDomainError(c *gin.Context, err error) {
	var domainErr *transfer.Error
	if !errors.As(err, &domainErr) {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Transfer step failed")
		return
	}
	c.JSON(statusForCode(domainErr.Code), ErrorResponse{
		Message:           domainErr.Message,
		Code:              domainErr.Code,
		RemainingAttempts: domainErr.RemainingAttempts,
		Session:           h.session.Snapshot(),
	})
}

func statusForCode(code transfer.Code) int {
	switch code {
	case transfer.CodeInvalidFormat, transfer.CodeInvalidAmount, transfer.CodeMissingRecipient:
		return http.StatusBadRequest
	case transfer.CodeRecipientNotFound:
		return http.StatusNotFound
	case transfer.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	case transfer.CodeIncorrectPin:
		return http.StatusUnauthorized
	case transfer.CodeLockedOut:
		return http.StatusLocked
	case transfer.CodeInvalidState:
		return http.StatusConflict
	case transfer.CodeDirectoryUnavailable, transfer.CodeVerificationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
