//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	pb "github.com/oshokin/vlarm/internal/pb/v1"
)

// Client wraps the gRPC AlarmService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the vlarm server.
	conn *grpc.ClientConn
	// api is the AlarmService client interface.
	api pb.AlarmServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Entry is an alarm together with the status the server computed for it.
type Entry struct {
	Alarm  domain.Alarm
	Status domain.Status
}

// Interpretation is the server's answer to an utterance.
type Interpretation struct {
	// Reply is the text the server speaks.
	Reply string
	// Rule names the interpreter rule that matched.
	Rule string
	// Alarm is the scheduled alarm, nil when the utterance was not understood.
	Alarm *Entry
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an alarm id is not provided.
	errIDRequired = errors.New("alarm id must be provided")
	// errMalformedResponse is returned when the server answers with an unexpected shape.
	errMalformedResponse = errors.New("malformed response")
)

// Dial establishes a gRPC connection to the vlarm server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial vlarm server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Interpret sends an utterance to the server.
func (c *Client) Interpret(ctx context.Context, utterance string) (*Interpretation, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Interpret(callCtx, wrapperspb.String(utterance))
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}

	fields := resp.GetFields()
	result := &Interpretation{
		Reply: fields[pb.FieldReply].GetStringValue(),
		Rule:  fields[pb.FieldRule].GetStringValue(),
	}

	if s := fields[pb.FieldAlarm].GetStructValue(); s != nil {
		if result.Alarm, err = decodeEntry(s); err != nil {
			return nil, fmt.Errorf("interpret: %w", err)
		}
	}

	return result, nil
}

// ListAlarms returns every alarm in trigger time order.
func (c *Client) ListAlarms(ctx context.Context) ([]Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	values := resp.GetFields()[pb.FieldAlarms].GetListValue().GetValues()
	entries := make([]Entry, 0, len(values))

	for _, v := range values {
		entry, decodeErr := decodeEntry(v.GetStructValue())
		if decodeErr != nil {
			return nil, fmt.Errorf("list alarms: %w", decodeErr)
		}

		entries = append(entries, *entry)
	}

	return entries, nil
}

// GetAlarm returns one alarm.
func (c *Client) GetAlarm(ctx context.Context, id string) (*Entry, error) {
	return c.byID(ctx, "get alarm", id, pb.AlarmServiceClient.GetAlarm)
}

// UpdateAlarm applies patch to the alarm with the given id.
func (c *Client) UpdateAlarm(ctx context.Context, id string, patch domain.Patch) (*Entry, error) {
	if id == "" {
		return nil, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.UpdateAlarm(callCtx, pb.PatchToStruct(id, patch))
	if err != nil {
		return nil, fmt.Errorf("update alarm: %w", err)
	}

	return decodeEntry(resp)
}

// DeleteAlarm removes one alarm.
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	if id == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.DeleteAlarm(callCtx, wrapperspb.String(id)); err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}

	return nil
}

// SnoozeAlarm defers one alarm by the server's snooze interval.
func (c *Client) SnoozeAlarm(ctx context.Context, id string) (*Entry, error) {
	return c.byID(ctx, "snooze alarm", id, pb.AlarmServiceClient.SnoozeAlarm)
}

// DismissAlarm clears the snooze state of one alarm.
func (c *Client) DismissAlarm(ctx context.Context, id string) (*Entry, error) {
	return c.byID(ctx, "dismiss alarm", id, pb.AlarmServiceClient.DismissAlarm)
}

type byIDCall func(
	pb.AlarmServiceClient,
	context.Context,
	*wrapperspb.StringValue,
	...grpc.CallOption,
) (*structpb.Struct, error)

func (c *Client) byID(ctx context.Context, operation, id string, call byIDCall) (*Entry, error) {
	if id == "" {
		return nil, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := call(c.api, callCtx, wrapperspb.String(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return decodeEntry(resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func decodeEntry(s *structpb.Struct) (*Entry, error) {
	if s == nil {
		return nil, errMalformedResponse
	}

	a, err := pb.AlarmFromStruct(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedResponse, err)
	}

	return &Entry{
		Alarm:  *a,
		Status: pb.StatusFromStruct(s),
	}, nil
}
