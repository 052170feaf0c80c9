package service

import "context"

// ERPClient is the slice of the session client the pipeline consumes.
// *erp.Client satisfies it; tests substitute fakes.
type ERPClient interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
	Post(ctx context.Context, endpoint string, body any) ([]byte, error)
	Put(ctx context.Context, endpoint string, body any) ([]byte, error)
	Delete(ctx context.Context, endpoint string) ([]byte, error)
}
