package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/textilia/contracts-service/internal/http/middleware"
	"github.com/textilia/contracts-service/internal/model"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, environment string) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	contracts := router.Group("/contracts")
	contracts.Use(authMiddleware)

	parties := contracts.Group("")
	parties.Use(middleware.RequireRoles(model.RoleSupplier, model.RoleCustomer))
	{
		parties.GET("/detail", handler.contractDetail)
		parties.GET("/all", handler.listAll)
		parties.GET("/running", handler.listRunning)
		parties.GET("/completed/:userId", handler.listCompleted)
		parties.GET("/blockbooking", handler.listBlockBooking)
		parties.GET("/new/:userId", handler.listNew)
		parties.PUT("/update", handler.updateContractStatus)
		parties.GET("/document/:id", handler.contractDocument)
	}

	suppliers := contracts.Group("")
	suppliers.Use(middleware.RequireRoles(model.RoleSupplier))
	{
		suppliers.POST("/create", handler.createContract)
		suppliers.POST("/so-document/:id", handler.uploadSODocument)
	}

	customers := contracts.Group("")
	customers.Use(middleware.RequireRoles(model.RoleCustomer))
	{
		customers.POST("/accept/:id", handler.acceptContract)
		customers.POST("/customer/monthly-plans", handler.createMonthlyPlans)
		customers.GET("/customer/:contractId/monthly-plans", handler.monthlyPlansForContract)
	}

	everyone := contracts.Group("")
	everyone.Use(middleware.RequireRoles(model.RoleAdmin, model.RoleCustomer, model.RoleSupplier))
	{
		everyone.GET("/stats", handler.contractStats)
		everyone.GET("/stats/export", handler.exportContractStats)
	}

	return router
}
