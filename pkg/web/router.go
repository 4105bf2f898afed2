package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/internal/config"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/web/views/health"
	"github.com/jwhong1020/LabCalc/pkg/web/views/login"
	photometryView "github.com/jwhong1020/LabCalc/pkg/web/views/photometry"
	planView "github.com/jwhong1020/LabCalc/pkg/web/views/plan"
	reactionView "github.com/jwhong1020/LabCalc/pkg/web/views/reaction"
	"github.com/jwhong1020/LabCalc/pkg/web/views/sse"
	stockView "github.com/jwhong1020/LabCalc/pkg/web/views/stock"
	templateView "github.com/jwhong1020/LabCalc/pkg/web/views/template"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires middleware and every route group. The returned func closes
// the live channel and must run before the http server shuts down.
func NewRouter(ctx context.Context, g *gin.Engine) context.CancelFunc {
	installMiddleware(g)
	return installURL(ctx, g)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(ctx context.Context, g *gin.Engine) context.CancelFunc {
	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Workbench identity
	{
		l := login.NewLogin()
		authGroup := api.Group("/auth")
		authGroup.POST("/login", l.Login)
		authGroup.GET("/me", auth.AuthWeb(), l.Me)
	}

	rHandle := reactionView.NewReactionHandle(ctx)

	v1 := api.Group("/v1", auth.AuthWeb())

	// Stock DB
	{
		sHandle := stockView.NewStockHandle()
		stockRouter := v1.Group("/stock")
		stockRouter.POST("", sHandle.CreateStock)
		stockRouter.GET("", sHandle.ListStocks)
		stockRouter.GET("/lookup", sHandle.Lookup)
		stockRouter.GET("/:uuid", sHandle.GetStock)
		stockRouter.PUT("/:uuid", sHandle.UpdateStock)
		stockRouter.DELETE("/:uuid", sHandle.DeleteStock)
	}

	// Reaction templates
	{
		tHandle := templateView.NewTemplateHandle()
		templateRouter := v1.Group("/template")
		templateRouter.POST("", tHandle.CreateTemplate)
		templateRouter.GET("", tHandle.ListTemplates)
		templateRouter.GET("/:uuid", tHandle.GetTemplate)
		templateRouter.PUT("/:uuid", tHandle.UpdateTemplate)
		templateRouter.DELETE("/:uuid", tHandle.DeleteTemplate)
		templateRouter.GET("/:uuid/resolve", tHandle.ResolveTemplate)
	}

	// New Reaction form: explicit compute plus the live websocket channel
	{
		reactionRouter := v1.Group("/reaction")
		reactionRouter.POST("/compute", rHandle.Compute)
		reactionRouter.POST("/assemble", rHandle.Assemble)
		reactionRouter.GET("/live", rHandle.Live)
	}

	// Plans
	{
		pHandle := planView.NewPlanHandle()
		planRouter := v1.Group("/plan")
		planRouter.POST("", pHandle.CreatePlan)
		planRouter.GET("", pHandle.ListPlans)
		planRouter.GET("/:uuid", pHandle.GetPlan)
		planRouter.PUT("/:uuid", pHandle.UpdatePlan)
		planRouter.POST("/:uuid/reaction", pHandle.AppendReaction)
		planRouter.DELETE("/reaction/:uuid", pHandle.DeleteReaction)
		planRouter.DELETE("/:uuid", pHandle.DeletePlan)
		planRouter.GET("/:uuid/export", pHandle.ExportPlan)
	}

	// Nanodrop measurements and reference tables
	{
		phHandle := photometryView.NewPhotometryHandle()
		photometryRouter := v1.Group("/photometry")
		photometryRouter.POST("/labeling/compute", phHandle.ComputeLabeling)
		photometryRouter.POST("/labeling", phHandle.SaveLabeling)
		photometryRouter.GET("/labeling", phHandle.ListRecords)
		photometryRouter.GET("/labeling/:uuid", phHandle.GetRecord)
		photometryRouter.DELETE("/labeling/:uuid", phHandle.DeleteRecord)
		photometryRouter.GET("/epsilon", phHandle.ListEpsilons)
		photometryRouter.PUT("/epsilon", phHandle.UpsertEpsilon)
		photometryRouter.DELETE("/epsilon", phHandle.DeleteEpsilon)
		photometryRouter.GET("/cf", phHandle.ListCorrectionFactors)
		photometryRouter.PUT("/cf", phHandle.UpsertCorrectionFactor)
	}

	// Entity-change stream
	nHandle := sse.NewNotifyHandle(ctx)
	v1.GET("/notify", nHandle.Notify)

	return func() {
		rHandle.Close(ctx)
		nHandle.Close(ctx)
	}
}
