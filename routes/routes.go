package routes

import (
	authController "voting-system/controllers/auth"
	voteController "voting-system/controllers/vote"
	"voting-system/logger"
	"voting-system/middleware"
	otpService "voting-system/services/otp"
	sessionService "voting-system/services/session"
	voteService "voting-system/services/vote"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	otpSvc := otpService.NewService(db)
	sessionSvc := sessionService.NewService(db)
	voteSvc := voteService.NewService(db)

	auth := authController.NewAuthController(db, asyncLogger, otpSvc, sessionSvc)
	vote := voteController.NewVoteController(db, asyncLogger, voteSvc)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/register", auth.Register)
	api.Post("/otp/request", auth.RequestOTP)
	api.Get("/candidates", vote.Candidates)
	api.Get("/results", vote.Results)

	/*=============================================================================
	| Session Routes
	===============================================================================*/
	api.Post("/otp/verify", middleware.RequireSession(sessionSvc), auth.VerifyOTP)
	api.Post("/logout", middleware.RequireSession(sessionSvc), auth.Logout)

	/*=============================================================================
	| Voting Routes
	===============================================================================*/
	api.Post("/vote", middleware.RequireVoter(sessionSvc), vote.Cast)
}
