package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrAccountPending  = errors.New("account is waiting for admin approval")
	ErrAccountRejected = errors.New("account registration was rejected")
	ErrAccountInactive = errors.New("account is not active")
	ErrNotAdmin        = errors.New("admin role required")
	ErrInvalidStatus   = errors.New("invalid account status")

	// Status transition errors
	ErrAdminStatusLocked = errors.New("admin account status cannot be changed")
	ErrStatusTransition  = errors.New("rejected accounts cannot be reactivated")

	// ErrInvalidRegistration covers missing or malformed registration fields
	ErrInvalidRegistration = errors.New("email, full name and a password of at least 6 characters are required")

	// Economy errors
	ErrTicketsExhausted   = errors.New("tickets exhausted")
	ErrUnknownGameVariant = errors.New("unknown game variant")
	ErrInvalidScore       = errors.New("score must be between 0 and the per-game maximum")

	// Companion errors
	ErrItemNotFound     = errors.New("item not found")
	ErrNoCompanion      = errors.New("account has no active item")
	ErrCompanionExists  = errors.New("account already has an active item")
	ErrInvalidItemType  = errors.New("invalid item type")
	ErrInvalidItem      = errors.New("item name and personality are required")
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// Content errors
	ErrInvalidContentKey   = errors.New("content key is required")
	ErrInvalidContentValue = errors.New("content value must be valid JSON")

	// Storage errors
	ErrConcurrentUpdate = errors.New("record was modified concurrently, retry the request")
)

// Kind classifies errors for callers that need to tell failures apart
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidRequest
	KindConflict
	KindForbidden
)

var kinds = map[error]Kind{
	ErrAccountNotFound:     KindNotFound,
	ErrItemNotFound:        KindNotFound,
	ErrNoCompanion:         KindNotFound,
	ErrTicketsExhausted:    KindInvalidRequest,
	ErrUnknownGameVariant:  KindInvalidRequest,
	ErrInvalidScore:        KindInvalidRequest,
	ErrInvalidItemType:     KindInvalidRequest,
	ErrInvalidItem:         KindInvalidRequest,
	ErrAlreadyCheckedIn:    KindInvalidRequest,
	ErrInvalidStatus:       KindInvalidRequest,
	ErrInvalidRegistration: KindInvalidRequest,
	ErrInvalidContentKey:   KindInvalidRequest,
	ErrInvalidContentValue: KindInvalidRequest,
	ErrEmailExists:         KindConflict,
	ErrCompanionExists:     KindConflict,
	ErrConcurrentUpdate:    KindConflict,
	ErrStatusTransition:    KindConflict,
	ErrAccountPending:      KindForbidden,
	ErrAccountRejected:     KindForbidden,
	ErrAccountInactive:     KindForbidden,
	ErrNotAdmin:            KindForbidden,
	ErrAdminStatusLocked:   KindForbidden,
}

// KindOf returns the kind of the first known error in err's chain
func KindOf(err error) Kind {
	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}
