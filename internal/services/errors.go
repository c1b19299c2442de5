// Package services implements the translation fan-out core: the channel
// topology resolver, the quota gate, the content classifier, the per-guild
// registry, and the fan-out synchronizer. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; adapters
// (the Discord sender in particular) translate platform errors into them so
// the synchronizer can branch without knowing the wire protocol.
package services

import "errors"

var (
	// ErrMirrorNotFound indicates that a mirror message no longer exists on
	// the platform (deleted by a human or by retention). It is an expected
	// outcome for edit and delete propagation, not a failure.
	ErrMirrorNotFound = errors.New("mirror message not found")

	// ErrNoTranslator is returned when neither a per-guild API key nor a
	// process-wide key is available to build a translator.
	ErrNoTranslator = errors.New("no translator available")
)
