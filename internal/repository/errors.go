// Package repository implements the persistence layer: the booking record
// store and the room availability ledger, both as hand-written SQL over
// database/sql.  The sentinel errors below form the business error
// taxonomy; handlers translate them into HTTP responses and never inspect
// SQL errors directly.
package repository

import "errors"

// ErrRoomUnavailable is returned when an overlapping active booking
// already holds the room for the requested date range.  This is an
// expected business outcome, not a system fault; handlers translate it
// into a 409 with a "room no longer available" message.
var ErrRoomUnavailable = errors.New("room unavailable for requested dates")

// ErrRoomNotReservable is returned when housekeeping or administrative
// flags block the room regardless of dates.
var ErrRoomNotReservable = errors.New("room not reservable")

// ErrInvalidDateRange is returned when check-in is not strictly before
// check-out.
var ErrInvalidDateRange = errors.New("invalid date range")

// ErrCapacityExceeded is returned when the guest count exceeds the room's
// capacity.
var ErrCapacityExceeded = errors.New("guest count exceeds room capacity")

// ErrAlreadyAttached is returned when a payment reference is attached to a
// booking that already carries one.  It guards against duplicate session
// creation on client retry.
var ErrAlreadyAttached = errors.New("payment reference already attached")

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the booking's current state.  State is left untouched.
var ErrInvalidTransition = errors.New("invalid booking state transition")

// ErrBookingNotFound is returned when no booking matches the given id or
// transaction reference.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomNotFound is returned when no room matches the given id.
var ErrRoomNotFound = errors.New("room not found")

// ErrForbidden is returned when the caller attempts an operation on a
// booking owned by another guest.  Handlers translate this into a 403.
var ErrForbidden = errors.New("forbidden")
