package middleware_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/logger"
	"clinic-booking/internal/middleware"
	"clinic-booking/internal/rpc"
)

const secret = "mw-secret"

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}

func withAuth(v string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", v))
}

func echoSession(ctx context.Context, _ any) (any, error) {
	return middleware.SessionFrom(ctx), nil
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", middleware.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", middleware.BearerToken("bearer abc"))
	assert.Empty(t, middleware.BearerToken("Basic abc"))
	assert.Empty(t, middleware.BearerToken("Bearer "))
	assert.Empty(t, middleware.BearerToken(""))
}

func TestSessionProtectedMethods(t *testing.T) {
	ic := middleware.Session(secret)
	good, err := auth.MakeToken(1, auth.NewSessionID(), secret, time.Hour)
	require.NoError(t, err)
	forged, _ := auth.MakeToken(1, auth.NewSessionID(), "other", time.Hour)

	_, err = ic(context.Background(), nil, info(rpc.MethodBookAppointment), echoSession)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = ic(withAuth("Bearer "+forged), nil, info(rpc.MethodSyncAppointment), echoSession)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	got, err := ic(withAuth("Bearer "+good), nil, info(rpc.MethodBookAppointment), echoSession)
	require.NoError(t, err)
	assert.Equal(t, good, got)
}

func TestSessionOpenMethods(t *testing.T) {
	ic := middleware.Session(secret)

	for _, m := range []string{rpc.MethodRegister, rpc.MethodLogin, rpc.MethodLogout, rpc.MethodWhoAmI, rpc.MethodListDoctorAppointments} {
		got, err := ic(context.Background(), nil, info(m), echoSession)
		require.NoError(t, err, m)
		assert.Empty(t, got, m)
	}

	// open methods pass the handle through unverified
	got, err := ic(withAuth("Bearer junk"), nil, info(rpc.MethodLogout), echoSession)
	require.NoError(t, err)
	assert.Equal(t, "junk", got)
}

func peerCtx(addr string) context.Context {
	tcp, _ := net.ResolveTCPAddr("tcp", addr)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

func TestRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Close()
	ic := middleware.RateLimit(rl)
	ok := func(context.Context, any) (any, error) { return "ok", nil }

	// ports differ, host is the same bucket
	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.1:1001"} {
		_, err := ic(peerCtx(addr), nil, info(rpc.MethodLogin), ok)
		require.NoError(t, err)
	}
	_, err := ic(peerCtx("10.0.0.1:1002"), nil, info(rpc.MethodRegister), ok)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// other clients and unlimited methods are unaffected
	_, err = ic(peerCtx("10.0.0.2:1000"), nil, info(rpc.MethodLogin), ok)
	assert.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = ic(peerCtx("10.0.0.1:1000"), nil, info(rpc.MethodWhoAmI), ok)
		assert.NoError(t, err)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	defer rl.Close()
	rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ic := middleware.Logging(zap.New(core))

	var seen string
	_, err := ic(context.Background(), nil, info(rpc.MethodWhoAmI), func(ctx context.Context, _ any) (any, error) {
		seen = logger.RequestID(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, seen)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(middleware.RequestIDHeader, "req-7"))
	_, err = ic(ctx, nil, info(rpc.MethodLogin), func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	})
	assert.Error(t, err)

	require.Equal(t, 2, logs.Len())
	first, second := logs.All()[0], logs.All()[1]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.Equal(t, seen, first.ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, second.Level)
	assert.Equal(t, "req-7", second.ContextMap()["request_id"])
	assert.Equal(t, "Unauthenticated", second.ContextMap()["code"])
}
