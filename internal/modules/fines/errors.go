package fines

import "carrental/internal/pkg/apperror"

var (
	ErrFineNotFound = apperror.NotFound("fine")
	ErrAlreadyPaid  = apperror.New(apperror.CodeInvalidTransition, "fine is already paid")
	ErrVoided       = apperror.New(apperror.CodeInvalidTransition, "fine has been voided")
	ErrNothingToPay = apperror.New(apperror.CodePayment, "fine amount is zero")
	ErrMissingNote  = apperror.Validation("a note is required to void a paid fine")
)
