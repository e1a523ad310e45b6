package frontend

import (
	"strings"
	"time"

	"fflogs_phase_ranker/share"

	"github.com/dpapathanasiou/go-recaptcha"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func remoteAddr(c *gin.Context) string {
	if v := c.GetHeader("X-Forwarded-For"); v != "" {
		return v
	}
	if v := c.GetHeader("X-Real-Ip"); v != "" {
		return v
	}

	addr := c.Request.RemoteAddr
	if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
		addr = addr[:idx]
	}
	return addr
}

func (s *server) routeQueue(c *gin.Context) {
	ws, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		share.CaptureError(errors.WithStack(err))
		return
	}

	////////////////////////////////////////////////////////////////////////////////////////////////////

	if s.opt.RecaptchaSecret != "" {
		ws.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			ws.Close()
			return
		}

		ok, err := recaptcha.Confirm(remoteAddr(c), string(msg))
		if err != nil || !ok {
			ws.Close()
			return
		}
		ws.SetReadDeadline(time.Time{})
	}

	s.opt.Pool.Do(c.Request.Context(), ws)
}
