package service

import (
	"context"
)

// JSONGetter is the outbound side of every service: one GET, decoded into out.
// *upstream.Client satisfies it.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, out interface{}) error
	Malformed(format string, args ...interface{}) error
}
