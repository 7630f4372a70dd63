package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dkramer/flightdeck/internal/balance"
	"github.com/dkramer/flightdeck/internal/models"
)

type BalanceHandler struct {
	service *balance.Service
}

func NewBalanceHandler(svc *balance.Service) *BalanceHandler {
	return &BalanceHandler{service: svc}
}

func (h *BalanceHandler) List(c echo.Context) error {
	balances, err := h.service.ListBalances(c.Request().Context())
	if err != nil {
		return balanceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"balances": balances})
}

func (h *BalanceHandler) Get(c echo.Context) error {
	bal, err := h.service.GetBalance(c.Request().Context(), c.Param("program"))
	if err != nil {
		return balanceError(c, err)
	}
	return c.JSON(http.StatusOK, bal)
}

func (h *BalanceHandler) Update(c echo.Context) error {
	var req models.BalanceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	bal, err := h.service.UpdateBalance(c.Request().Context(), c.Param("program"), req.Miles, req.Tier, req.Note)
	if err != nil {
		var verr models.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: verr.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return balanceError(c, err)
	}
	return c.JSON(http.StatusOK, bal)
}

func (h *BalanceHandler) History(c echo.Context) error {
	program := c.Param("program")
	entries, err := h.service.GetHistory(c.Request().Context(), program)
	if err != nil {
		return balanceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"program": program,
		"history": entries,
	})
}

func balanceError(c echo.Context, err error) error {
	if errors.Is(err, models.ErrBalanceNotFound) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}
