package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent        = "event"
	FieldFamily       = "family"
	FieldCommand      = "command"
	FieldMode         = "mode"
	FieldInvocationID = "invocation_id"
	FieldDurationMs   = "duration_ms"
	FieldStatus       = "status"
)

const (
	EventDispatch       = "dispatch"
	EventUnknownCommand = "unknown_command"
	EventChildExit      = "child_exit"
	EventUpdateStep     = "update_step"
	EventUpdateFailure  = "update_failure"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func FamilyField(family string) zap.Field {
	return zap.String(FieldFamily, family)
}

func CommandField(command string) zap.Field {
	return zap.String(FieldCommand, command)
}

func ModeField(mode string) zap.Field {
	return zap.String(FieldMode, mode)
}

func InvocationIDField(value string) zap.Field {
	return zap.String(FieldInvocationID, value)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func StatusField(status int) zap.Field {
	return zap.Int(FieldStatus, status)
}
