package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (g *Gateway) Router(gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(), AccessLog(g.opts.Log))

	r.GET("/healthz", g.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	limited := api.Group("", RateLimit(g.opts.Limiter))
	limited.POST("/register", g.Register)
	limited.POST("/login", g.Login)

	api.POST("/logout", g.Logout)
	api.GET("/user-info", g.UserInfo)
	api.POST("/appointments", g.Book)
	api.POST("/appointments/:id/sync", g.Sync)
	api.GET("/doctors/:id/appointments", g.DoctorAppointments)

	return r
}
