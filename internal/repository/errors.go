// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. The registration engine in
// particular reports each precondition failure as its own sentinel so
// the HTTP layer can keep the distinct status codes and messages the
// chat front end depends on.
package repository

import "errors"

// ErrUserExists is returned when creating a user whose telegram id is
// already taken. Handlers should translate this into HTTP 409.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when no user matches the given telegram id.
var ErrUserNotFound = errors.New("user not found")

// ErrEventNotFound is returned when no event matches the given id.
var ErrEventNotFound = errors.New("event not found")

// ErrAlreadyRegistered is returned when the (event, user) pair already
// holds a registration. The pair is unique by invariant.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrEventFull is returned when an event has reached max_participants.
var ErrEventFull = errors.New("event is full")

// ErrEventEnded is returned when the event's combined date and time is
// not in the future at registration time.
var ErrEventEnded = errors.New("event has ended")

// ErrNotRegistered is returned when cancelling a registration that does
// not exist for the (event, user) pair.
var ErrNotRegistered = errors.New("not registered for this event")
