package pb

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/vlarm/internal/domain/alarm"
)

// Alarm struct fields.
const (
	FieldID           = "id"
	FieldTriggerTime  = "trigger_time"
	FieldEnabled      = "enabled"
	FieldMessage      = "message"
	FieldRepeatDaily  = "repeat_daily"
	FieldSnoozeActive = "snooze_active"
	FieldStatus       = "status"
)

// Interpret and ListAlarms response fields.
const (
	FieldReply     = "reply"
	FieldRule      = "rule"
	FieldScheduled = "scheduled"
	FieldAlarm     = "alarm"
	FieldAlarms    = "alarms"
)

// ErrInvalidAlarm is returned when a struct does not describe an alarm.
var ErrInvalidAlarm = errors.New("invalid alarm")

// AlarmToStruct encodes an alarm without its status.
func AlarmToStruct(a *domain.Alarm) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldID:           structpb.NewStringValue(a.ID),
			FieldTriggerTime:  structpb.NewStringValue(FormatTime(a.TriggerTime)),
			FieldEnabled:      structpb.NewBoolValue(a.IsEnabled),
			FieldMessage:      structpb.NewStringValue(a.Message),
			FieldRepeatDaily:  structpb.NewBoolValue(a.RepeatDaily),
			FieldSnoozeActive: structpb.NewBoolValue(a.SnoozeActive),
		},
	}
}

// AlarmWithStatus encodes an alarm and its status at reference.
// Disabled alarms carry an empty status.
func AlarmWithStatus(a *domain.Alarm, reference time.Time) *structpb.Struct {
	s := AlarmToStruct(a)

	var st domain.Status
	if a.IsEnabled {
		st = a.Status(reference)
	}

	s.Fields[FieldStatus] = structpb.NewStringValue(string(st))

	return s
}

// AlarmFromStruct decodes an alarm. The id and the trigger time are required.
func AlarmFromStruct(s *structpb.Struct) (*domain.Alarm, error) {
	id, patch, err := PatchFromStruct(s)
	if err != nil {
		return nil, err
	}

	if patch.TriggerTime == nil {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidAlarm, FieldTriggerTime)
	}

	a := &domain.Alarm{ID: id}
	patch.Apply(a)

	return a, nil
}

// StatusFromStruct returns the status field, empty when absent.
func StatusFromStruct(s *structpb.Struct) domain.Status {
	return domain.Status(s.GetFields()[FieldStatus].GetStringValue())
}

// PatchToStruct encodes an edit of the alarm with the given id.
func PatchToStruct(id string, p domain.Patch) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldID: structpb.NewStringValue(id),
	}

	if p.TriggerTime != nil {
		fields[FieldTriggerTime] = structpb.NewStringValue(FormatTime(*p.TriggerTime))
	}

	if p.Message != nil {
		fields[FieldMessage] = structpb.NewStringValue(*p.Message)
	}

	if p.RepeatDaily != nil {
		fields[FieldRepeatDaily] = structpb.NewBoolValue(*p.RepeatDaily)
	}

	if p.IsEnabled != nil {
		fields[FieldEnabled] = structpb.NewBoolValue(*p.IsEnabled)
	}

	if p.SnoozeActive != nil {
		fields[FieldSnoozeActive] = structpb.NewBoolValue(*p.SnoozeActive)
	}

	return &structpb.Struct{Fields: fields}
}

// PatchFromStruct decodes the id and every present alarm field.
// Unknown fields, including status, are ignored.
func PatchFromStruct(s *structpb.Struct) (string, domain.Patch, error) {
	var patch domain.Patch

	fields := s.GetFields()

	id, err := stringField(fields, FieldID)
	if err != nil {
		return "", patch, err
	}

	if id == nil || *id == "" {
		return "", patch, fmt.Errorf("%w: %s is required", ErrInvalidAlarm, FieldID)
	}

	raw, err := stringField(fields, FieldTriggerTime)
	if err != nil {
		return "", patch, err
	}

	if raw != nil {
		t, parseErr := ParseTime(*raw)
		if parseErr != nil {
			return "", patch, fmt.Errorf("%w: %s: %w", ErrInvalidAlarm, FieldTriggerTime, parseErr)
		}

		patch.TriggerTime = &t
	}

	if patch.Message, err = stringField(fields, FieldMessage); err != nil {
		return "", patch, err
	}

	if patch.IsEnabled, err = boolField(fields, FieldEnabled); err != nil {
		return "", patch, err
	}

	if patch.RepeatDaily, err = boolField(fields, FieldRepeatDaily); err != nil {
		return "", patch, err
	}

	if patch.SnoozeActive, err = boolField(fields, FieldSnoozeActive); err != nil {
		return "", patch, err
	}

	return *id, patch, nil
}

// AlarmsToList encodes alarms in order.
func AlarmsToList(alarms []domain.Alarm) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(alarms))
	for i := range alarms {
		values = append(values, structpb.NewStructValue(AlarmToStruct(&alarms[i])))
	}

	return &structpb.ListValue{Values: values}
}

// AlarmsFromList decodes a list written by AlarmsToList.
func AlarmsFromList(list *structpb.ListValue) ([]domain.Alarm, error) {
	alarms := make([]domain.Alarm, 0, len(list.GetValues()))

	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidAlarm, i)
		}

		a, err := AlarmFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		alarms = append(alarms, *a)
	}

	return alarms, nil
}

// FormatTime renders t as RFC 3339 with its offset.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTime parses an RFC 3339 time into the local time zone.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}

	return t.Local(), nil
}

func stringField(fields map[string]*structpb.Value, name string) (*string, error) {
	v, ok := fields[name]
	if !ok {
		return nil, nil //nolint:nilnil // Absent field.
	}

	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidAlarm, name)
	}

	return &sv.StringValue, nil
}

func boolField(fields map[string]*structpb.Value, name string) (*bool, error) {
	v, ok := fields[name]
	if !ok {
		return nil, nil //nolint:nilnil // Absent field.
	}

	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidAlarm, name)
	}

	return &bv.BoolValue, nil
}
