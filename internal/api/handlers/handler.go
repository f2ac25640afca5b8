package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type Handler struct {
	config    *config.Config
	services  *services.Services
	validator *validator.Validate
}

type paginationResponse struct {
	NextKey string `json:"next_key"`
}

type PublicResponse[T any] struct {
	Success    bool                `json:"success"`
	Data       T                   `json:"data"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type Result struct {
	Data   interface{}
	Status int
}

// NewResult returns a successful result, with default status code 200
func NewResultWithPagination[T any](data T, pageToken string) *Result {
	res := &PublicResponse[T]{Success: true, Data: data, Pagination: &paginationResponse{NextKey: pageToken}}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Success: true, Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewCreatedResult[T any](data T) *Result {
	res := &PublicResponse[T]{Success: true, Data: data}
	return &Result{Data: res, Status: http.StatusCreated}
}

func New(
	ctx context.Context, cfg *config.Config, services *services.Services,
) (*Handler, error) {
	v := validator.New()
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		config:    cfg,
		services:  services,
		validator: v,
	}, nil
}

// fieldErrorCodes picks the error kind reported for a payload field that
// fails validation. Fields not listed are reported as VALIDATION_ERROR.
var fieldErrorCodes = map[string]types.ErrorCode{
	"issuer_pubkey":    types.MalformedKey,
	"recipient_pubkey": types.MalformedKey,
	"amount":           types.MalformedAmount,
	"signature":        types.InvalidSignature,
}

// decodePayload reads a JSON request body into payload and validates it.
func (h *Handler) decodePayload(request *http.Request, payload interface{}) *types.Error {
	err := json.NewDecoder(request.Body).Decode(payload)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fieldError(typeErr.Field, "invalid value for "+typeErr.Field)
		}
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}

	err = h.validator.Struct(payload)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			return fieldError(fe.Field(), fe.Field()+" failed validation: "+fe.Tag())
		}
		return types.NewError(http.StatusBadRequest, types.ValidationError, err)
	}
	return nil
}

func fieldError(field, msg string) *types.Error {
	code, ok := fieldErrorCodes[field]
	if !ok {
		code = types.ValidationError
	}
	return types.NewFieldError(http.StatusBadRequest, code, field, msg)
}
