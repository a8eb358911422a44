// Package client is the single gateway to the recharge API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) used by the
//     session and the form services: Login, Register, UpdateProfile,
//     GetRechargeHistory, MakeRecharge, Me, ServerLogout, Logout.
//  2. HTTPClient, the JSON/HTTP implementation. One instance is built at
//     start-up and shared; it owns the default Authorization header, stores
//     credentials through the token store after login/register, and wraps
//     the transport in a circuit breaker.
//  3. InitDatabase, which opens the local sqlite file and applies the
//     embedded goose migrations.
//
// # Error Handling
//
// Inputs are validated before any network traffic; failures are
// *ValidationError and match ErrValidation. Every non-2xx response and
// every transport failure is normalised into *ServerError, carrying the
// server's "message" when it sent one. Match the kind with errors.Is:
// ErrUnauthorized (401), ErrUnavailable (network down, breaker open) or
// ErrServer (anything else).
//
// A 401 from any call clears the stored credential and drops the
// Authorization header before the error is returned. The client never
// retries.
package client
