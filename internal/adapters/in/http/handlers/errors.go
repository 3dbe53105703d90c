// internal/adapters/in/http/handlers/errors.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"talentagency/internal/application/usecase"
	cartdom "talentagency/internal/domain/cart"
	checkoutdom "talentagency/internal/domain/checkout"
	newsdom "talentagency/internal/domain/news"
	orderdom "talentagency/internal/domain/order"
	productdom "talentagency/internal/domain/product"
	appdom "talentagency/internal/domain/serviceapp"
	wishdom "talentagency/internal/domain/wishlist"
)

type errorBody struct {
	Error  string               `json:"error"`
	Code   string               `json:"code"`
	Fields []usecase.FieldError `json:"fields,omitempty"`
}

type errorRule struct {
	targets []error
	status  int
	code    string
}

// errorRules are checked in order with errors.Is.
var errorRules = []errorRule{
	{[]error{usecase.ErrUnauthenticated}, http.StatusUnauthorized, "unauthenticated"},
	{[]error{usecase.ErrForbidden}, http.StatusForbidden, "forbidden"},
	{[]error{
		productdom.ErrNotFound, orderdom.ErrNotFound, newsdom.ErrNotFound,
		appdom.ErrNotFound, checkoutdom.ErrNotFound,
	}, http.StatusNotFound, "not_found"},

	{[]error{usecase.ErrCartEmpty}, http.StatusConflict, "cart_empty"},
	{[]error{usecase.ErrCartHasUnavailableItems}, http.StatusConflict, "cart_unavailable_items"},
	{[]error{usecase.ErrCheckoutUnavailable}, http.StatusServiceUnavailable, "checkout_unavailable"},
	{[]error{usecase.ErrPaymentNotConfirmed}, http.StatusPaymentRequired, "payment_not_confirmed"},
	{[]error{usecase.ErrPaymentAmountMismatch}, http.StatusConflict, "payment_amount_mismatch"},
	{[]error{usecase.ErrPaymentVerification}, http.StatusBadGateway, "payment_verification_failed"},
	{[]error{checkoutdom.ErrInvalidTransition}, http.StatusConflict, "invalid_transition"},
	{[]error{orderdom.ErrTransitionNotAllowed}, http.StatusConflict, "transition_not_allowed"},
	{[]error{newsdom.ErrSlugTaken}, http.StatusConflict, "slug_taken"},
	{[]error{usecase.ErrMailDelivery}, http.StatusBadGateway, "mail_delivery_failed"},

	{[]error{usecase.ErrImageTooLarge}, http.StatusRequestEntityTooLarge, "image_too_large"},
	{[]error{usecase.ErrImageUnsupported}, http.StatusUnsupportedMediaType, "image_unsupported"},
	{[]error{usecase.ErrImageEmpty, usecase.ErrImageFolder}, http.StatusBadRequest, "invalid_image"},

	{[]error{
		usecase.ErrCartInvalidArgument, usecase.ErrWishlistInvalidArgument,
		cartdom.ErrInvalidCart, cartdom.ErrInvalidProductID, cartdom.ErrInvalidQuantity,
		wishdom.ErrInvalidWishlist, wishdom.ErrInvalidProductID,
		checkoutdom.ErrInvalidReference, checkoutdom.ErrInvalidEmail, checkoutdom.ErrEmptyItems,
		productdom.ErrInvalidKind, productdom.ErrInvalidName, productdom.ErrInvalidPrice,
		productdom.ErrInvalidDescription, productdom.ErrInvalidID,
		orderdom.ErrInvalidStatus, orderdom.ErrInvalidItems, orderdom.ErrInvalidDelivery,
		newsdom.ErrInvalidTitle, newsdom.ErrInvalidSlug, newsdom.ErrInvalidBody,
		newsdom.ErrInvalidPostID, newsdom.ErrCommentTooLong,
		appdom.ErrInvalidService, appdom.ErrInvalidName, appdom.ErrInvalidEmail,
	}, http.StatusBadRequest, "invalid_argument"},
}

var authStatus = map[usecase.AuthErrorCode]int{
	usecase.AuthInvalidCredentials: http.StatusUnauthorized,
	usecase.AuthTooManyAttempts:    http.StatusTooManyRequests,
	usecase.AuthAccountDisabled:    http.StatusForbidden,
	usecase.AuthEmailInUse:         http.StatusConflict,
	usecase.AuthWeakPassword:       http.StatusBadRequest,
	usecase.AuthNetwork:            http.StatusServiceUnavailable,
	usecase.AuthUnknown:            http.StatusBadRequest,
}

// statusFor maps a usecase/domain error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var ae *usecase.AuthError
	if errors.As(err, &ae) {
		if s, ok := authStatus[ae.Code]; ok {
			return s, string(ae.Code)
		}
		return http.StatusBadRequest, string(ae.Code)
	}
	if errors.Is(err, usecase.ErrValidation) {
		return http.StatusBadRequest, "validation_failed"
	}
	for _, rule := range errorRules {
		for _, t := range rule.targets {
			if errors.Is(err, t) {
				return rule.status, rule.code
			}
		}
	}
	return http.StatusInternalServerError, "internal"
}

// writeError renders {error, code[, fields]}. 5xx details stay in the log.
func writeError(w http.ResponseWriter, tag string, err error) {
	status, code := statusFor(err)
	body := errorBody{Error: err.Error(), Code: code}

	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		body.Error = "validation failed"
		body.Fields = ve.Fields
	}
	var ae *usecase.AuthError
	if errors.As(err, &ae) {
		body.Error = ae.Message
	}

	if status >= 500 {
		log.Printf("[%s] status=%d err=%v", tag, status, err)
		if status == http.StatusInternalServerError {
			body.Error = "internal server error"
		}
	}
	writeJSON(w, status, body)
}
