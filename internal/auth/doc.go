// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package auth implements shop accounts: registration, login and bearer tokens.

Passwords are hashed with bcrypt. A successful login returns an HS256 JWT
carrying the user id and email. Login attempts are limited per email address
with a token bucket, on top of the per-IP limit applied by the HTTP router.

# Authentication Modes

  - none: tokens are issued on login but not required. Handlers trust the
    user id in the request.
  - jwt: rating, ordering, order history and recommendations require a
    bearer token, and the token's user id must match the user id the
    request acts on.

# Usage

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	svc := auth.NewService(store, jwtManager, auth.WithBcryptCost(cfg.Security.BcryptCost))
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode)

	r.With(mw.RequireAuth).Post("/orders", handlers.PlaceOrder)

Inside a handler:

	if err := mw.Authorize(r.Context(), userID); err != nil {
	    // 401 or 403
	}
*/
package auth
