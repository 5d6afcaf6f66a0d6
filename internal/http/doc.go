// Package http exposes the ledger over a JSON API routed with chi.
//
// The router exposes the following endpoints:
//   - GET /health: liveness probe, no session required.
//   - POST /sessions: issues a session token. Body: {"username","password"}.
//     Response: {"token","expires_at","actor"} with the token also surfaced via
//     the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the token from the Authorization header
//     or session cookie and clears the cookie.
//   - GET/PUT /policy, GET /reports/balances, GET/PUT /document: process-wide
//     policy, the deficit and surplus report, whole-document export and import.
//   - GET/POST /accounts, PUT/DELETE /accounts/{accountID},
//     PUT /accounts/{accountID}/password, PUT /me/password: account management.
//   - GET /persons?exam_date=&q=, GET /persons/{personID} and its balance,
//     entries, compensation, exam-dates, audit and export sub-resources.
//
// Every endpoint other than /health and POST /sessions requires a session,
// sent as `Authorization: Bearer <token>` or the session cookie. Errors are
// returned as {"error_code","message","errors"} with messages in pt-BR.
package http
