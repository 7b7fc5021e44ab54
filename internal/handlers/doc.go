// Package handlers implements the HTTP API of expsum.
//
// Handlers delegate to the RunService and focus on request validation,
// error mapping and model-to-API conversion.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request and query parsing                                    │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion (api/v1)                             │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                  services.RunService                            │
//	└─────────────────────────────────────────────────────────────────┘
//
// The Handler implements v1.ServerInterface and is mounted with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
//	┌────────┬──────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                              │
//	├────────┼──────────────────┼──────────────────────────────────────────┤
//	│ POST   │ /runs            │ Submit a run, 202 with the pending run   │
//	│ GET    │ /runs            │ List runs (status, limit, offset)        │
//	│ GET    │ /runs/{id}       │ Get one run                              │
//	│ GET    │ /runs/{id}/terms │ Get the settled terms of a run           │
//	└────────┴──────────────────┴──────────────────────────────────────────┘
//
// POST /runs:
//
//	{ "base": 2, "terms": 5, "workers": 2, "mechanism": "epoll" }
//
// GET /runs accepts repeated status values; limit defaults to 20 and is
// capped at 100.
//
// # Error Mapping
//
//	┌──────────────────────────────┬────────┐
//	│ Error                        │ Status │
//	├──────────────────────────────┼────────┤
//	│ malformed body or query      │ 400    │
//	│ ConfigurationError           │ 400    │
//	│ UnsupportedMechanismError    │ 422    │
//	│ RunNotFoundError             │ 404    │
//	│ anything else                │ 500    │
//	└──────────────────────────────┴────────┘
//
// Every error body is {"error": "<message>"}. Internal errors are logged
// and replaced by a generic message.
package handlers
