// Package errors provides error handling for satchel.
//
// It re-exports github.com/cockroachdb/errors so callers get stack
// traces, wrapping, and errors.Is/As-compatible inspection from a
// single import, and defines the sentinel errors raised by the store
// when a name fails to resolve.
//
// Usage:
//
//	if err := store.DeleteBag(ctx, name); err != nil {
//	    if errors.Is(err, errors.ErrNoBag) {
//	        // bag never existed or is already gone
//	    }
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// GetStack returns a reportable stack trace from an error, if any.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors for entity resolution. Each is returned when the
// corresponding name (or compound key) does not resolve to a stored id.
// Deleting an entity twice yields the same sentinel as deleting one that
// never existed. Wrap these with errors.Wrap to add context while
// preserving the kind.
var (
	// ErrNoBag indicates the named bag does not exist
	ErrNoBag = New("no such bag")

	// ErrNoRecipe indicates the named recipe does not exist
	ErrNoRecipe = New("no such recipe")

	// ErrNoUser indicates the named user does not exist
	ErrNoUser = New("no such user")

	// ErrNoTiddler indicates the (bag, title) pair does not resolve to a
	// tiddler, or that its resolved revision is missing its modifier row
	ErrNoTiddler = New("no such tiddler")

	// ErrMalformedRecipe indicates a stored recipe element is missing the
	// bag/filter delimiter and cannot be decoded
	ErrMalformedRecipe = New("malformed recipe element")
)

// IsNoBag reports whether err is or wraps ErrNoBag.
func IsNoBag(err error) bool {
	return err != nil && Is(err, ErrNoBag)
}

// IsNoRecipe reports whether err is or wraps ErrNoRecipe.
func IsNoRecipe(err error) bool {
	return err != nil && Is(err, ErrNoRecipe)
}

// IsNoUser reports whether err is or wraps ErrNoUser.
func IsNoUser(err error) bool {
	return err != nil && Is(err, ErrNoUser)
}

// IsNoTiddler reports whether err is or wraps ErrNoTiddler.
func IsNoTiddler(err error) bool {
	return err != nil && Is(err, ErrNoTiddler)
}

// IsNotFound reports whether err is any of the entity-resolution sentinels.
func IsNotFound(err error) bool {
	return err != nil && IsAny(err, ErrNoBag, ErrNoRecipe, ErrNoUser, ErrNoTiddler)
}
