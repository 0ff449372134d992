package dashboard

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/middleware"
)

//go:embed templates/index.html
var indexHTML string

// SetupRouter wires the dashboard routes.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.CORS())

	funcs := template.FuncMap{"inc": func(i int) int { return i + 1 }}
	r.SetHTMLTemplate(template.Must(template.New("index.html").Funcs(funcs).Parse(indexHTML)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sunspot dashboard is running",
		})
	})

	r.GET("/", h.Index)

	charts := r.Group("/charts")
	{
		charts.GET("/sunspot.png", h.SunspotChart)
		charts.GET("/cycle.png", h.CycleChart)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/dataset", h.GetDataset)
		api.GET("/sunspot", h.GetSunspot)
		api.GET("/cycle", h.GetCycle)
		api.GET("/image", h.GetImage)
		api.POST("/dispatch", h.PostDispatch)
		api.GET("/stats", h.GetStats)
	}

	return r
}
