package server

import (
	auction "job-auction/internal/auctionService"
	"job-auction/internal/events"
	handler "job-auction/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService, broker *events.Broker) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlate logs per request
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService, broker)

	router.GET("/healthz", HealthHandler)

	jobs := router.Group("/jobs")
	{
		jobs.POST("", auctionHandler.CreateJobHandler)
		jobs.GET("", auctionHandler.ListJobsHandler)
		jobs.GET("/:job_id", auctionHandler.GetJobHandler)

		jobs.POST("/:job_id/make_biddable", auctionHandler.MakeBiddableHandler)
		jobs.POST("/:job_id/make_instant", auctionHandler.MakeInstantHandler)
		jobs.POST("/:job_id/assign", auctionHandler.AssignHandler)
		jobs.POST("/:job_id/in_transit", auctionHandler.InTransitHandler)
		jobs.POST("/:job_id/complete", auctionHandler.CompleteHandler)
		jobs.POST("/:job_id/cancel", auctionHandler.CancelHandler)
		jobs.POST("/:job_id/resolve", auctionHandler.ResolveHandler)

		jobs.POST("/:job_id/bids", auctionHandler.SubmitBidHandler)
		jobs.DELETE("/:job_id/bids/mine", auctionHandler.WithdrawBidHandler)
		jobs.GET("/:job_id/bids", auctionHandler.ListBidsHandler)

		jobs.GET("/:job_id/auction-summary", auctionHandler.AuctionSummaryHandler)
		jobs.GET("/:job_id/audit", auctionHandler.AuditTrailHandler)
		jobs.GET("/:job_id/events", auctionHandler.StreamEventsHandler)
	}

	providers := router.Group("/providers")
	{
		providers.GET("/:provider_id/jobs", auctionHandler.ProviderJobsHandler)
	}

	return router
}
