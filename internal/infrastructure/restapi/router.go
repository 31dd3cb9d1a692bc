package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions toggles the optional surfaces of the router.
type RouterOptions struct {
	AllowOrigins []string
	SwaggerFile  string // path to swagger.yaml; empty disables /docs
	EnablePprof  bool
	Events       http.Handler // websocket event stream; nil disables /ws
}

// SetupRouter configures and returns the gin engine.
func SetupRouter(sessions *SessionHandler, market *MarketHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 || lo.Contains(opts.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Device-ID"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Events != nil {
		router.GET("/ws", gin.WrapH(opts.Events))
	}
	if opts.SwaggerFile != "" {
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerFile)
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
	}
	if opts.EnablePprof {
		pprofGroup := router.Group("/debug/pprof")
		{
			pprofGroup.GET("/", gin.WrapF(pprof.Index))
			pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
			pprofGroup.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))
			pprofGroup.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofGroup.GET("/block", gin.WrapH(pprof.Handler("block")))
			pprofGroup.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofGroup.GET("/heap", gin.WrapH(pprof.Handler("heap")))
			pprofGroup.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
			pprofGroup.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
		}
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/network", market.GetNetwork)
		v1.GET("/tokens", market.GetTokens)
		v1.GET("/tokens/:address/logo", market.GetLogo)
		v1.GET("/search", market.Search)
		v1.POST("/quote", market.GetQuote)

		v1.POST("/sessions", sessions.CreateSession)
		s := v1.Group("/sessions/:id")
		{
			s.GET("", sessions.GetSession)
			s.DELETE("", sessions.DeleteSession)
			s.GET("/xp", sessions.GetProgression)
			s.POST("/xp", sessions.AwardXP)
			s.GET("/toast", sessions.GetToast)
			s.DELETE("/toast", sessions.DismissToast)
			s.PUT("/tab", sessions.SelectTab)
			s.GET("/tabs/:tab", sessions.RenderTab)
			s.GET("/leaderboard", sessions.GetLeaderboard)

			s.PUT("/swap", sessions.UpdateSwapForm)
			s.POST("/swap/execute", sessions.ExecuteSwap)
			s.POST("/swap/limit-orders", sessions.PlaceLimitOrder)
			s.POST("/swap/share", sessions.ShareSwap)
			s.POST("/swap/reset", sessions.ResetSwap)

			s.POST("/earn/deposits", sessions.Deposit)
			s.POST("/earn/reset", sessions.ResetEarn)

			s.PUT("/launch", sessions.UpdateLaunchForm)
			s.POST("/launch", sessions.LaunchToken)
			s.POST("/launch/share", sessions.ShareLaunch)
			s.POST("/launch/reset", sessions.ResetLaunch)

			s.GET("/portfolio", sessions.GetPortfolio)

			s.POST("/profile/sign-in", sessions.SignIn)
			s.POST("/profile/sign-out", sessions.SignOut)
			s.PUT("/profile/wallet", sessions.ConnectWallet)
			s.DELETE("/profile/wallet", sessions.DisconnectWallet)
			s.POST("/profile/notifications", sessions.EnableNotifications)
			s.PUT("/profile/avatar", sessions.SetAvatar)
			s.POST("/profile/open-url", sessions.OpenURL)
			s.POST("/profile/onboarding", sessions.CompleteOnboarding)
		}
	}

	return router
}
