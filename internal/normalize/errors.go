// SPDX-License-Identifier: Apache-2.0

package normalize

import "errors"

// ErrUnrecognizedShape is returned when a raw record is in neither the
// current nor any recognized legacy shape. This is a programming or data
// error, distinct from the silent self-healing path for recognized legacy
// shapes, and is never recovered locally.
var ErrUnrecognizedShape = errors.New("record shape not recognized")
