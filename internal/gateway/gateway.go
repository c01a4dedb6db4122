// Package gateway exposes the booking service over JSON/HTTP for browsers.
// Routes call the gRPC handler in process, so both surfaces share one
// implementation and one error mapping.
package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/handler"
	"clinic-booking/internal/middleware"
	"clinic-booking/internal/rpc"
)

const CookieName = "sid"

type Options struct {
	SessionTTL   time.Duration
	SecureCookie bool
	Limiter      *middleware.RateLimiter
	Log          *zap.Logger
}

type Gateway struct {
	h    *handler.Handler
	opts Options
}

func New(h *handler.Handler, opts Options) *Gateway {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Gateway{h: h, opts: opts}
}

var httpStatus = map[codes.Code]int{
	codes.OK:                http.StatusOK,
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.AlreadyExists:     http.StatusConflict,
	codes.NotFound:          http.StatusNotFound,
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.Unavailable:       http.StatusServiceUnavailable,
	codes.ResourceExhausted: http.StatusTooManyRequests,
}

// HTTPStatus maps a status error from the handler to an HTTP status code.
func HTTPStatus(err error) int {
	if s, ok := httpStatus[status.Code(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	c.JSON(HTTPStatus(err), gin.H{"error": status.Convert(err).Message()})
}

// sessionHandle prefers the Authorization header over the cookie.
func sessionHandle(c *gin.Context) string {
	if tok := middleware.BearerToken(c.GetHeader("Authorization")); tok != "" {
		return tok
	}
	v, _ := c.Cookie(CookieName)
	return v
}

func (g *Gateway) ctx(c *gin.Context) context.Context {
	return middleware.WithSession(c.Request.Context(), sessionHandle(c))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id: must be a positive integer"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

func (g *Gateway) Register(c *gin.Context) {
	var in rpc.RegisterRequest
	if !bindJSON(c, &in) {
		return
	}
	resp, err := g.h.Register(c.Request.Context(), &in)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (g *Gateway) Login(c *gin.Context) {
	var in rpc.LoginRequest
	if !bindJSON(c, &in) {
		return
	}
	resp, err := g.h.Login(c.Request.Context(), &in)
	if err != nil {
		abort(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, resp.Token, int(g.opts.SessionTTL.Seconds()), "/", "", g.opts.SecureCookie, true)
	c.JSON(http.StatusOK, resp)
}

func (g *Gateway) Logout(c *gin.Context) {
	if _, err := g.h.Logout(g.ctx(c), &rpc.LogoutRequest{}); err != nil {
		abort(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", g.opts.SecureCookie, true)
	c.Status(http.StatusNoContent)
}

func (g *Gateway) UserInfo(c *gin.Context) {
	resp, err := g.h.WhoAmI(g.ctx(c), &rpc.WhoAmIRequest{})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (g *Gateway) Book(c *gin.Context) {
	var in rpc.BookAppointmentRequest
	if !bindJSON(c, &in) {
		return
	}
	resp, err := g.h.BookAppointment(g.ctx(c), &in)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, resp)
	case resp != nil:
		// booked, but the calendar copy is missing
		c.JSON(HTTPStatus(err), gin.H{"error": status.Convert(err).Message(), "appointment": resp.Appointment})
	default:
		abort(c, err)
	}
}

func (g *Gateway) Sync(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := g.h.SyncAppointment(g.ctx(c), &rpc.SyncAppointmentRequest{AppointmentID: id})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case resp != nil:
		c.JSON(HTTPStatus(err), gin.H{"error": status.Convert(err).Message(), "appointment": resp.Appointment})
	default:
		abort(c, err)
	}
}

func (g *Gateway) DoctorAppointments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := g.h.ListDoctorAppointments(c.Request.Context(), &rpc.ListDoctorAppointmentsRequest{DoctorID: id})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (g *Gateway) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
