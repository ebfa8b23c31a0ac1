package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"
)

const apiKeyHeader = "x-api-key"

// ObjectResult is one entry of a batch fetch: either Object or Err is set.
type ObjectResult struct {
	ID     string
	Object *models.Object
	Err    error
}

// ObjectClient reads live objects from the gRPC ledger service.
type ObjectClient struct {
	conn    grpc.ClientConnInterface
	closer  io.Closer
	schema  *ledgerSchema
	metrics *metrics.Registry
}

func withAPIKey(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(apiKeyHeader, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func apiKeyInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(withAPIKey(ctx, token), method, req, reply, cc, opts...)
	}
}

// NewObjectClient connects to the ledger service at addr. TLS is used unless
// plaintext is set.
func NewObjectClient(addr, token string, plaintext bool, m *metrics.Registry) (*ObjectClient, error) {
	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if plaintext {
		creds = insecure.NewCredentials()
	}

	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if token != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(token)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}

	c, err := newObjectClient(conn, m)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.closer = conn
	return c, nil
}

func newObjectClient(conn grpc.ClientConnInterface, m *metrics.Registry) (*ObjectClient, error) {
	schema, err := loadLedgerSchema()
	if err != nil {
		return nil, err
	}
	return &ObjectClient{conn: conn, schema: schema, metrics: m}, nil
}

func (c *ObjectClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// FetchObject returns the live object with the given id. Only a NotFound
// status is reported as a *DeletedError; a response without an object is
// an ordinary error.
func (c *ObjectClient) FetchObject(ctx context.Context, id string) (*models.Object, error) {
	req := c.schema.newGetObjectRequest(id)
	resp := dynamicpb.NewMessage(c.schema.getObjectResponse)

	err := c.conn.Invoke(ctx, getObjectMethod, req, resp)
	c.metrics.Remote("grpc", "GetObject", err)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &DeletedError{ID: id}
		}
		return nil, c.mapError(err)
	}

	objField := c.schema.getObjectResponse.Fields().ByName("object")
	if !resp.Has(objField) {
		return nil, fmt.Errorf("object %s: empty result", id)
	}
	return c.schema.decodeObject(resp.Get(objField).Message())
}

// FetchObjects fetches ids in one batch call. The result has one entry per
// id in request order; per-object failures are reported in the entry and do
// not fail the batch.
func (c *ObjectClient) FetchObjects(ctx context.Context, ids []string) ([]ObjectResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	req := c.schema.newBatchRequest(ids)
	resp := dynamicpb.NewMessage(c.schema.batchResponse)

	err := c.conn.Invoke(ctx, batchGetObjectsMeth, req, resp)
	c.metrics.Remote("grpc", "BatchGetObjects", err)
	if err != nil {
		return nil, c.mapError(err)
	}

	list := resp.Get(c.schema.batchResponse.Fields().ByName("objects")).List()
	if list.Len() != len(ids) {
		return nil, fmt.Errorf("batch get objects: asked for %d, got %d", len(ids), list.Len())
	}

	var (
		objField = c.schema.objectResult.Fields().ByName("object")
		errField = c.schema.objectResult.Fields().ByName("error")
	)

	results := make([]ObjectResult, len(ids))
	for i, id := range ids {
		results[i].ID = id
		item := list.Get(i).Message()

		switch {
		case item.Has(objField):
			obj, err := c.schema.decodeObject(item.Get(objField).Message())
			if err != nil {
				results[i].Err = err
				continue
			}
			results[i].Object = obj
		case item.Has(errField):
			code, msg := c.schema.decodeStatus(item.Get(errField).Message())
			if codes.Code(code) == codes.NotFound {
				results[i].Err = &DeletedError{ID: id}
				continue
			}
			results[i].Err = fmt.Errorf("object %s: %s: %s", id, codes.Code(code), msg)
		default:
			results[i].Err = fmt.Errorf("object %s: empty result", id)
		}
	}
	return results, nil
}

func (c *ObjectClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
