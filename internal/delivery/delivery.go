// Package delivery defines the contract every transport implementation satisfies.
package delivery

import "context"

// Delivery is a request-serving surface (e.g. the HTTP server) started by the
// application after all dependencies are wired.
type Delivery interface {
	Serve(ctx context.Context) error
}
