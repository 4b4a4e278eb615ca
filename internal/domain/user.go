// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxUserIDLen = 128

var (
	ErrMissingUID = errors.New("uid is required")
	ErrUIDTooLong = errors.New("uid too long")
)

type UserID string

// ValidateUserID keeps ad-hoc uid checks out of adapters.
func ValidateUserID(uid UserID) error {
	if len(uid) == 0 {
		return ErrMissingUID
	}
	if len(uid) > MaxUserIDLen {
		return ErrUIDTooLong
	}
	return nil
}
