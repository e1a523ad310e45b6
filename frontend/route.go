package frontend

import (
	_ "embed"
	"net/http"
	"time"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/analysis/analysispool"
	"fflogs_phase_ranker/dataset"

	"github.com/dpapathanasiou/go-recaptcha"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed public/index.htm
var indexHtml []byte

var (
	websocketUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

type Options struct {
	Library     *dataset.Library
	NewReporter func(reportID, credential string) analysis.Reporter
	Pool        *analysispool.Pool

	// RecaptchaSecret enables the token check on /ws.
	RecaptchaSecret string
	// SessionTTL is how long an idle report session is kept. Zero uses 30 minutes.
	SessionTTL time.Duration
}

type server struct {
	opt      Options
	sessions *sessionStore
}

func Route(g *gin.Engine, opt Options) {
	if opt.SessionTTL <= 0 {
		opt.SessionTTL = 30 * time.Minute
	}
	if opt.RecaptchaSecret != "" {
		recaptcha.Init(opt.RecaptchaSecret)
	}

	s := &server{
		opt:      opt,
		sessions: newSessionStore(opt.SessionTTL),
	}

	g.Use(gin.ErrorLogger())
	g.Use(gin.Recovery())

	g.NoMethod(func(c *gin.Context) { c.Redirect(http.StatusTemporaryRedirect, "/") })
	g.NoRoute(func(c *gin.Context) { c.Redirect(http.StatusTemporaryRedirect, "/") })

	g.GET("/", func(c *gin.Context) { c.Data(http.StatusOK, "text/html; charset=utf-8", indexHtml) })

	api := g.Group("/api")
	api.GET("/datasets", s.routeDatasets)
	api.GET("/datasets/encounters", s.routeEncounters)
	api.GET("/datasets/resolve", s.routeResolve)
	api.GET("/datasets/table", s.routeTable)
	api.GET("/reports/:code", s.routeReport)
	api.GET("/reports/:code/fights/:fight", s.routeFight)
	api.GET("/reports/:code/fights/:fight/phases/:phase", s.routePhase)

	if opt.Pool != nil {
		g.GET("/ws", s.routeQueue)
	}
}
