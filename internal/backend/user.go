// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/models"
)

// Me calls GET on the me endpoint through the authenticated path, so an
// expired access token is renewed transparently.
func (h *HTTP) Me(ctx context.Context) (models.User, error) {
	var u models.User
	if _, err := h.client.Do(ctx, Call{Method: http.MethodGet, Path: h.endpoints.Me}, &u); err != nil {
		return models.User{}, err
	}
	if u.Username == "" && u.Email == "" {
		return models.User{}, errors.New(errors.Status, "me endpoint returned an empty user")
	}
	return u, nil
}
