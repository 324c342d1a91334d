// Copyright (C) 2026 OpenHEP (maintainers@openhep.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fit

import "errors"

// Sentinel errors for the fit package. Callers classify failures with
// errors.Is; messages wrapped around these sentinels carry the detail.
var (
	// ErrInvalidRange indicates a malformed fit range or one that
	// excludes every observed point.
	ErrInvalidRange = errors.New("invalid fit range")

	// ErrInvalidParameter indicates malformed initial parameters, for
	// example a negative starting yield or an unknown fixed-parameter
	// name.
	ErrInvalidParameter = errors.New("invalid fit parameter")

	// ErrInvalidTemplate indicates a shape template that cannot be
	// normalized on the fit range or takes negative values there.
	ErrInvalidTemplate = errors.New("invalid shape template")

	// ErrNonConvergence indicates the minimizer stopped without reaching
	// the configured tolerance.
	ErrNonConvergence = errors.New("fit did not converge")
)
