package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/trackline/verdict"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if isDuplicate(err) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrResourceRequired) || errors.Is(err, verdict.ErrInvalidAccessType) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrReservedRole) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, verdict.ErrUserNotFound) ||
		errors.Is(err, verdict.ErrRoleNotFound) ||
		errors.Is(err, verdict.ErrPermissionNotFound) ||
		errors.Is(err, verdict.ErrGrantNotFound) ||
		errors.Is(err, verdict.ErrDecisionLogNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, verdict.ErrDuplicateUser) ||
		errors.Is(err, verdict.ErrDuplicateRole) ||
		errors.Is(err, verdict.ErrDuplicatePermission)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
