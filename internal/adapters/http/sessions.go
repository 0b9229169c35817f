package http

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dkeye/Shuffle/internal/app/orch"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

type sessionHandlers struct {
	orch *orch.Orchestrator
}

func (h *sessionHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Sessions.List())
}

func (h *sessionHandlers) get(c *gin.Context) {
	code := domain.SessionCode(c.Param("code"))
	members, ok := h.orch.Sessions.Members(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "participants": members})
}

// qr renders an invite link for the session. Sessions only exist while
// someone is in them, so unknown codes are still valid invites.
func (h *sessionHandlers) qr(c *gin.Context) {
	code := domain.SessionCode(c.Param("code"))
	if err := code.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_session_code"})
		return
	}
	png, err := qrcode.Encode(inviteURL(c.Request, code), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("session", string(code)).Msg("qr encode")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func inviteURL(r *http.Request, code domain.SessionCode) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return fmt.Sprintf("%s://%s/?session=%s", scheme, r.Host, url.QueryEscape(string(code)))
}
