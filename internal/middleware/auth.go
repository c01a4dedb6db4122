package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/rpc"
)

type ctxKey string

const sessionKey ctxKey = "session"

// these reject calls without a well-signed handle
var protected = map[string]bool{
	rpc.MethodBookAppointment: true,
	rpc.MethodSyncAppointment: true,
}

// WithSession stores the raw session handle for handlers.
func WithSession(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, sessionKey, handle)
}

// SessionFrom returns the handle stored by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	h, _ := ctx.Value(sessionKey).(string)
	return h
}

// BearerToken strips the scheme from an Authorization value.
func BearerToken(v string) string {
	if len(v) > 7 && strings.EqualFold(v[:7], "Bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

// Session moves the Bearer token from metadata into the context. Whether
// the session behind it is still live is for the session gate to decide.
func Session(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		raw := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				raw = BearerToken(vals[0])
			}
		}

		if protected[info.FullMethod] {
			if raw == "" {
				return nil, status.Error(codes.Unauthenticated, "no token")
			}
			if _, err := auth.ParseToken(raw, secret); err != nil {
				return nil, status.Error(codes.Unauthenticated, "bad token")
			}
		}

		return next(WithSession(ctx, raw), req)
	}
}
