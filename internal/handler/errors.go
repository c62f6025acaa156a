package handler

import (
	"errors"
	"net/http"

	"ecshop/internal/domain/model"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string      `json:"error"`
	Detail interface{} `json:"detail,omitempty"`
}

// SuccessResponse は Success { message: string } の形に寄せます。
type SuccessResponse struct {
	Message string `json:"message"`
}

type stockDetail struct {
	Kind      model.TargetKind `json:"kind"`
	ID        int64            `json:"id"`
	Requested int64            `json:"requested"`
	Available int64            `json:"available"`
}

type unitDetail struct {
	Kind model.TargetKind `json:"kind"`
	ID   int64            `json:"id"`
}

type transitionDetail struct {
	From model.OrderStatus `json:"from"`
	To   model.OrderStatus `json:"to"`
	Role model.Role        `json:"role"`
}

// ドメインエラー・HTTPError・usecaseの共通エラーをステータスに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	status, body := errorBody(err)
	return c.JSON(status, body)
}

func errorBody(err error) (int, ErrorResponse) {
	var (
		stockErr *model.InsufficientStockError
		unitErr  *model.UnitUnavailableError
		transErr *model.IllegalTransitionError
	)

	switch {
	case errors.As(err, &stockErr):
		return http.StatusBadRequest, ErrorResponse{Error: "insufficient stock", Detail: stockDetail{
			Kind:      stockErr.Unit.Kind,
			ID:        stockErr.Unit.ID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		}}
	case errors.As(err, &unitErr):
		return http.StatusBadRequest, ErrorResponse{Error: "unit unavailable", Detail: unitDetail{
			Kind: unitErr.Unit.Kind,
			ID:   unitErr.Unit.ID,
		}}
	case errors.As(err, &transErr):
		return http.StatusConflict, ErrorResponse{Error: "illegal transition", Detail: transitionDetail{
			From: transErr.From,
			To:   transErr.To,
			Role: transErr.Role,
		}}
	case errors.Is(err, model.ErrEmptyCart):
		return http.StatusBadRequest, ErrorResponse{Error: "cart empty"}
	case errors.Is(err, model.ErrInvalidAddress):
		//他人の住所は403、存在しなければ404
		switch {
		case errors.Is(err, usecase.ErrForbidden):
			return http.StatusForbidden, ErrorResponse{Error: "invalid address"}
		case errors.Is(err, usecase.ErrNotFound):
			return http.StatusNotFound, ErrorResponse{Error: "invalid address"}
		}
		return http.StatusBadRequest, ErrorResponse{Error: "invalid address"}
	case errors.Is(err, model.ErrCorruptLineItem):
		return http.StatusInternalServerError, ErrorResponse{Error: "corrupt cart line item"}
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status, ErrorResponse{Error: he.Message}
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: "validation error"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"}
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden"}
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: "conflict"}
	}

	//500
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}

// パスの :name を正のint64として読む
func paramID(c echo.Context, name string) (int64, bool) {
	id, err := parseInt64(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
