package handler

import "context"

type ContextKey string

var (
	RequestIDCtxKey      ContextKey = "requestID"
	RoleCtxKey           ContextKey = "role"
	SubCtxKey            ContextKey = "sub"
	MyInfoCtx            ContextKey = "myInfo"
	UserInfoCtx          ContextKey = "userInfo"
	ShiftCtx             ContextKey = "shift"
	UnavailabilityReqCtx ContextKey = "unavailabilityRequest"
)

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDCtxKey).(string); ok {
		return id
	}
	return ""
}
