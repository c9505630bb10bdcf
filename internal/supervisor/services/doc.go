// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

/*
Package services adapts the server's components to suture.Service.

Every wrapper turns a component lifecycle (ListenAndServe/Shutdown,
Run/Close, Start/Stop, or a periodic check) into a context-aware Serve that
returns when its context is cancelled:

  - HTTPServerService: the HTTP API, drained with a shutdown timeout
  - EventRouterService: the watermill router that consumes shop events
  - StoreMonitorService: periodic graph store ping, logging transitions
  - SweeperService: periodic cleanup of idle login limiter entries

Wrappers implement fmt.Stringer so suture's event hook names them.
*/
package services
