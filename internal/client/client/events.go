package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
	"github.com/ybbus/jsonrpc/v3"
)

const (
	queryEventsMethod = "suix_queryEvents"

	// DefaultPageSize is the largest page public full nodes serve.
	DefaultPageSize = 50
)

// Order is the direction events are returned in.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

type eventQuery struct {
	MoveEventType string `json:"MoveEventType"`
}

type rpcEvent struct {
	ID          models.EventID  `json:"id"`
	Type        string          `json:"type"`
	Sender      string          `json:"sender"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMs *models.U64     `json:"timestampMs"`
}

type eventPage struct {
	Data        []rpcEvent      `json:"data"`
	NextCursor  *models.EventID `json:"nextCursor"`
	HasNextPage bool            `json:"hasNextPage"`
}

// EventClient reads the node's event log over JSON-RPC.
type EventClient struct {
	rpc      jsonrpc.RPCClient
	pageSize int
	metrics  *metrics.Registry
}

// NewEventClient creates a client for the JSON-RPC endpoint at url. A
// non-empty token is sent as the x-api-key header.
func NewEventClient(url, token string, pageSize int, m *metrics.Registry) *EventClient {
	var rpc jsonrpc.RPCClient
	if token == "" {
		rpc = jsonrpc.NewClient(url)
	} else {
		rpc = jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
			CustomHeaders: map[string]string{
				apiKeyHeader: token,
			},
		})
	}
	return newEventClient(rpc, pageSize, m)
}

func newEventClient(rpc jsonrpc.RPCClient, pageSize int, m *metrics.Registry) *EventClient {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	return &EventClient{rpc: rpc, pageSize: pageSize, metrics: m}
}

// FetchAllEvents returns every event of eventType, following the cursor
// until the node reports no further page. Pages are concatenated in the
// order they were received. Any failure discards what was collected so far.
func (c *EventClient) FetchAllEvents(ctx context.Context, eventType string, order Order) ([]models.Event, error) {
	var (
		all    []models.Event
		cursor *models.EventID
	)

	for {
		page, err := c.queryPage(ctx, eventType, cursor, order)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Data {
			ev, err := decodeEvent(raw)
			if err != nil {
				return nil, err
			}
			all = append(all, ev)
		}

		if !page.HasNextPage {
			return all, nil
		}
		if page.NextCursor == nil {
			return nil, fmt.Errorf("query %s: %w", eventType, ErrBadCursor)
		}
		cursor = page.NextCursor
	}
}

func (c *EventClient) queryPage(ctx context.Context, eventType string, cursor *models.EventID, order Order) (*eventPage, error) {
	var page eventPage
	err := c.rpc.CallFor(ctx, &page, queryEventsMethod,
		eventQuery{MoveEventType: eventType}, cursor, c.pageSize, order == Descending)
	c.metrics.Remote("jsonrpc", queryEventsMethod, err)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", eventType, mapRPCError(err))
	}
	return &page, nil
}

func decodeEvent(raw rpcEvent) (models.Event, error) {
	name := models.EventName(raw.Type)
	payload, err := models.DecodePayload(name, raw.ParsedJSON)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s: %w", raw.ID, err)
	}

	ev := models.Event{
		ID:      raw.ID,
		Type:    raw.Type,
		Name:    name,
		Sender:  raw.Sender,
		Payload: payload,
	}
	if raw.TimestampMs != nil {
		ev.Timestamp = time.UnixMilli(int64(*raw.TimestampMs)).UTC()
	}
	return ev, nil
}

func mapRPCError(err error) error {
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Code == http.StatusUnauthorized || httpErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case httpErr.Code == http.StatusTooManyRequests || httpErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return fmt.Errorf("rpc error: %w", err)
}
