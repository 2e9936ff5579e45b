// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package validation wraps go-playground/validator v10 with a shared
// instance and readable error messages.
//
//	type PostRecord struct {
//	    ID    int64  `validate:"gt=0"`
//	    Title string `validate:"required,max=300"`
//	}
//
//	if err := validation.ValidateStruct(&rec); err != nil {
//	    return fmt.Errorf("post %d: %w", rec.ID, err)
//	}
package validation
