// Package api provides the HTTP client for the plant identification service.
//
// # Architecture
//
//   - client.go: Identifier interface, Client, multipart upload and chat
//   - types.go: wire types and the TransportError / ApplicationError pair
//   - retry.go: exponential backoff for transient chat failures
//
// # Errors
//
// A failed round-trip or non-2xx status is a *TransportError whose message
// is "Server error: <status text>". A 2xx body carrying an "error" field is
// an *ApplicationError with the server's message verbatim. Identification
// requests are never retried.
//
// # Usage
//
//	cfg := config.NewConfig()
//	if err := cfg.Validate(); err != nil {
//	    // handle error
//	}
//	client := api.NewClient(cfg)
//	result, err := client.Identify(ctx, "leaf.jpg", raw)
package api
