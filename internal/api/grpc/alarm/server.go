package alarm

import (
	"context"
	"errors"
	"time"

	"github.com/jmhodges/clock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	"github.com/oshokin/vlarm/internal/logger"
	pb "github.com/oshokin/vlarm/internal/pb/v1"
	"github.com/oshokin/vlarm/internal/service/alarms"
	"github.com/oshokin/vlarm/internal/service/voice"
)

// AlarmService abstracts the collection operations the transport layer depends on.
type AlarmService interface {
	List(ctx context.Context) []domain.Alarm
	FindByID(ctx context.Context, id string) (*domain.Alarm, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Alarm, error)
	Delete(ctx context.Context, id string) error
	Snooze(ctx context.Context, id string, now time.Time, d time.Duration) (*domain.Alarm, error)
	Dismiss(ctx context.Context, id string) (*domain.Alarm, error)
}

// VoiceService turns an utterance into an alarm and a spoken reply.
type VoiceService interface {
	Process(ctx context.Context, text string) (*voice.Outcome, error)
}

// Server implements the AlarmService gRPC API.
type Server struct {
	pb.UnimplementedAlarmServiceServer

	// alarms provides the collection operations.
	alarms AlarmService
	// voice interprets utterances.
	voice VoiceService
	// clock supplies the reference time for statuses and snoozes.
	clock clock.Clock
	// snooze is how far SnoozeAlarm defers an alarm.
	snooze time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

// WithSnooze sets the snooze interval.
func WithSnooze(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.snooze = d
		}
	}
}

// NewServer wires the provided services into a gRPC handler.
func NewServer(alarmService AlarmService, voiceService VoiceService, opts ...Option) *Server {
	s := &Server{
		alarms: alarmService,
		voice:  voiceService,
		clock:  clock.New(),
		snooze: config.DefaultSnooze,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Interpret schedules an alarm from the utterance and returns the reply being spoken.
func (s *Server) Interpret(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "utterance is required")
	}

	outcome, err := s.voice.Process(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(ctx, err, "unable to schedule alarm")
	}

	alarmValue := structpb.NewNullValue()
	if outcome.Alarm != nil {
		alarmValue = structpb.NewStructValue(pb.AlarmWithStatus(outcome.Alarm, s.clock.Now()))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.FieldReply:     structpb.NewStringValue(outcome.Reply),
			pb.FieldRule:      structpb.NewStringValue(string(outcome.Result.Rule())),
			pb.FieldScheduled: structpb.NewBoolValue(outcome.Alarm != nil),
			pb.FieldAlarm:     alarmValue,
		},
	}, nil
}

// ListAlarms returns every alarm in trigger time order with its current status.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	var (
		now    = s.clock.Now()
		list   = s.alarms.List(ctx)
		values = make([]*structpb.Value, 0, len(list))
	)

	for i := range list {
		values = append(values, structpb.NewStructValue(pb.AlarmWithStatus(&list[i], now)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.FieldAlarms: structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}, nil
}

// GetAlarm returns one alarm with its current status.
func (s *Server) GetAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	a, err := s.alarms.FindByID(ctx, id)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to load alarm")
	}

	return pb.AlarmWithStatus(a, s.clock.Now()), nil
}

// UpdateAlarm applies the fields present in the request to the alarm named by its id.
func (s *Server) UpdateAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "alarm is required")
	}

	id, patch, err := pb.PatchFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if patch.IsEmpty() {
		return nil, status.Error(codes.InvalidArgument, "nothing to update")
	}

	a, err := s.alarms.Update(ctx, id, patch)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to update alarm")
	}

	return pb.AlarmWithStatus(a, s.clock.Now()), nil
}

// DeleteAlarm removes one alarm.
func (s *Server) DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	if err = s.alarms.Delete(ctx, id); err != nil {
		return nil, toStatus(ctx, err, "unable to delete alarm")
	}

	return new(emptypb.Empty), nil
}

// SnoozeAlarm defers the alarm by the snooze interval from now.
func (s *Server) SnoozeAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	a, err := s.alarms.Snooze(ctx, id, now, s.snooze)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to snooze alarm")
	}

	return pb.AlarmWithStatus(a, now), nil
}

// DismissAlarm clears the snooze state.
func (s *Server) DismissAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	a, err := s.alarms.Dismiss(ctx, id)
	if err != nil {
		return nil, toStatus(ctx, err, "unable to dismiss alarm")
	}

	return pb.AlarmWithStatus(a, s.clock.Now()), nil
}

func requireID(req *wrapperspb.StringValue) (string, error) {
	if req.GetValue() == "" {
		return "", status.Error(codes.InvalidArgument, "alarm id is required")
	}

	return req.GetValue(), nil
}

// toStatus maps service errors to gRPC codes. Unknown errors are logged and
// reported as Internal with a generic message.
func toStatus(ctx context.Context, err error, message string) error {
	switch {
	case errors.Is(err, alarms.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, alarms.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, alarms.ErrInvalidSnooze), errors.Is(err, pb.ErrInvalidAlarm):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logger.ErrorKV(ctx, message, "error", err)

		return status.Error(codes.Internal, message)
	}
}
