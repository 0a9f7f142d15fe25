package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/services/handlers"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	authSvc        *AuthService
	taskSvc        *TaskService
	achievementSvc *AchievementService
	rewardSvc      *RewardService
	familySvc      *FamilyService
	mediaSvc       *MediaService
	monitoringSvc  *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.taskSvc = svc.Service(TASK_SVC).(*TaskService)
	svc.achievementSvc = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.rewardSvc = svc.Service(REWARD_SVC).(*RewardService)
	svc.familySvc = svc.Service(FAMILY_SVC).(*FamilyService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseJSON(c, http.StatusNotFound, "Not Found", "page not found")
	})

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server started")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	taskHandler := handlers.NewTaskHandler(svc.taskSvc, svc.authSvc)
	achievementHandler := handlers.NewAchievementHandler(svc.achievementSvc, svc.mediaSvc)
	rewardHandler := handlers.NewRewardHandler(svc.rewardSvc, svc.authSvc, svc.mediaSvc)
	familyHandler := handlers.NewFamilyHandler(svc.familySvc, svc.authSvc)

	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.ping)

	// Public
	v1.Post("/register", authHandler.Register)
	v1.Post("/login", authHandler.Login)
	v1.Post("/refresh", authHandler.RefreshToken)

	// Authenticated
	auth := v1.Group("", svc.authSvc.RequiredAuth())

	auth.Get("/me", authHandler.GetProfile)

	// Family
	auth.Post("/family", svc.authSvc.RequireRole(model.RoleParent), familyHandler.CreateFamily)
	auth.Post("/family/join", familyHandler.JoinFamily)
	auth.Get("/family", familyHandler.GetFamilyDetail)
	auth.Post("/family/invite-code", svc.authSvc.RequireRole(model.RoleParent), familyHandler.RegenerateInviteCode)

	// Tasks
	auth.Get("/tasks", taskHandler.GetFamilyTasks)
	auth.Get("/tasks/mine", taskHandler.GetAssignedTasks)
	auth.Post("/tasks", svc.authSvc.RequireRole(model.RoleParent), taskHandler.CreateTask)
	auth.Put("/tasks/:taskId", svc.authSvc.RequireRole(model.RoleParent), taskHandler.UpdateTask)
	auth.Delete("/tasks/:taskId", svc.authSvc.RequireRole(model.RoleParent), taskHandler.DeleteTask)
	auth.Post("/tasks/:taskId/submit", taskHandler.SubmitCompletion)

	// Completions
	auth.Get("/completions", taskHandler.GetUserCompletions)
	auth.Get("/completions/pending", svc.authSvc.RequireRole(model.RoleParent), taskHandler.GetPendingReviews)
	auth.Post("/completions/:completionId/approve", svc.authSvc.RequireRole(model.RoleParent), taskHandler.ApproveCompletion)
	auth.Post("/completions/:completionId/reject", svc.authSvc.RequireRole(model.RoleParent), taskHandler.RejectCompletion)

	// Achievements
	auth.Get("/achievements", achievementHandler.GetUserAchievements)
	auth.Get("/achievements/stats", achievementHandler.GetAchievementStats)
	auth.Post("/achievements/viewed", achievementHandler.MarkViewed)

	// Avatar and rewards
	auth.Get("/avatar", rewardHandler.GetAvatar)
	auth.Get("/rewards", rewardHandler.GetFamilyRewards)
	auth.Post("/rewards", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.CreateReward)
	auth.Put("/rewards/:rewardId", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.UpdateReward)
	auth.Post("/rewards/:rewardId/image", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.UploadRewardImage)
	auth.Post("/rewards/:rewardId/redeem", rewardHandler.RedeemReward)

	// Redemptions
	auth.Get("/redemptions", rewardHandler.GetUserRedemptions)
	auth.Get("/redemptions/pending", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.GetFamilyPendingRedemptions)
	auth.Post("/redemptions/:redemptionId/fulfill", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.FulfillRedemption)
	auth.Post("/redemptions/:redemptionId/cancel", svc.authSvc.RequireRole(model.RoleParent), rewardHandler.CancelRedemption)

	// Leaderboard
	auth.Get("/leaderboard", rewardHandler.GetFamilyLeaderboard)

	// Admin
	admin := auth.Group("/admin", svc.authSvc.RequireRole(model.RoleAdmin))
	admin.Post("/achievements", achievementHandler.CreateDefinition)
	admin.Put("/achievements/:achievementId", achievementHandler.UpdateDefinition)
	admin.Post("/achievements/:achievementId/icon", achievementHandler.UploadBadgeIcon)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(appErr.Err).WithField("path", c.Path()).Error(appErr.Message)
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return shared.ResponseJSON(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
