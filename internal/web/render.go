package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

func loadTemplates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// renderPage はフラッシュメッセージと認証状態を付与して HTML を返します。
func (h *Handler) renderPage(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["identity"] = auth.IdentityFrom(c)
	data["flashes"] = h.popFlashes(c)
	if _, ok := data["errors"]; !ok {
		data["errors"] = []string(nil)
	}
	c.HTML(status, name, data)
}

// renderError は 500 のエラーページを返します。詳細は debug モードのときだけ表示します。
func (h *Handler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.logger.Error("request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(logging.ContextRequestIDKey)),
	)

	data := gin.H{"message": "Internal server error"}
	if h.debug {
		data["detail"] = err.Error()
	}
	h.renderPage(c, http.StatusInternalServerError, "error.html", "Error", data)
}

func (h *Handler) addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		h.logger.Warn("failed to save flash", zap.Error(err))
	}
}

func (h *Handler) popFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		h.logger.Warn("failed to clear flashes", zap.Error(err))
	}

	flashes := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			flashes = append(flashes, s)
		}
	}
	return flashes
}
