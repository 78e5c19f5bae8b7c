// Package webhook verifies HMAC-SHA256 signed deliveries on /api/hooks.
//
// # Security Model
//
// - Signatures are compared with crypto/subtle after a length check
// - Body size is capped; an oversized body fails verification
// - Every failure is the same 401 "Unauthorised" with no detail
// - Logs never carry the body or either signature
//
// # Configuration
//
//	webhook:
//	  secret: ${WEBHOOK_SECRET}
//	  signature_headers: [x-signature-256, x-hub-signature-256]
//	  max_body_size: 1MB
//
// # Request Flow
//
//  1. POST arrives at /api/hooks
//  2. Body read up to max_body_size
//  3. First non-empty configured signature header selected
//  4. "sha256=" + hex(HMAC-SHA256(secret, body)) compared in constant time
//  5. Delivery recorded and published
//  6. 200 "Authorised!" or 401 "Unauthorised"
package webhook
