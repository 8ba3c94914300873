package movements

import (
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
)

func errProductNotFound() error {
	return apperrors.New(apperrors.CodeNotFound, "product not found")
}

func errProductInactive() error {
	return apperrors.New(apperrors.CodeStateConflict, "product is inactive")
}

func errPermissionDenied(role, movementType string) error {
	return apperrors.New(apperrors.CodeForbidden, "role may not record this movement type").
		WithDetails(map[string]string{"role": role, "type": movementType})
}

func errInsufficientStock(available, requested int) error {
	return apperrors.New(apperrors.CodeStateConflict, "insufficient stock").
		WithDetails(map[string]int{"available": available, "requested": requested})
}

func errAlreadyCancelled() error {
	return apperrors.New(apperrors.CodeStateConflict, "sale already cancelled")
}

func errReasonRequired() error {
	return apperrors.New(apperrors.CodeValidation, "adjustment reason is required")
}

func errMovementNotFound() error {
	return apperrors.New(apperrors.CodeNotFound, "movement not found")
}

func errInvalidMovementType(value string) error {
	return apperrors.New(apperrors.CodeValidation, "invalid movement type").
		WithDetails(map[string]string{"type": value})
}
