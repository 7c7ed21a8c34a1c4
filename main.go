package main

import (
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"accessmap/config"
	"accessmap/database"
	"accessmap/handlers"
	"accessmap/leaderboard"
	"accessmap/middleware"
	"accessmap/version"
)

const (
	EndPointHealth = "/health"

	EndPointRegisterOrg = "/register_org"

	EndPointSubmitReport        = "/submit_report"
	EndPointGetReport           = "/get_report"
	EndPointGetReports          = "/get_reports"
	EndPointDeleteReport        = "/delete_report"
	EndPointAddComment          = "/add_comment"
	EndPointLikeComment         = "/like_comment"
	EndPointSetTrust            = "/set_trust"
	EndPointSetOfficialResponse = "/set_official_response"

	EndPointSetVerified   = "/set_verified"
	EndPointSetSpam       = "/set_spam"
	EndPointSetUserSpam   = "/set_user_spam"
	EndPointGetUserStatus = "/get_user_status"

	EndPointCreateZone    = "/create_zone"
	EndPointUpdateZone    = "/update_zone"
	EndPointDeleteZone    = "/delete_zone"
	EndPointGetZones      = "/get_zones"
	EndPointGetZonesCount = "/get_zones_count"

	EndPointZonesContaining  = "/zones_containing"
	EndPointReportsInZone    = "/reports_in_zone"
	EndPointReportsInAnyZone = "/reports_in_any_zone"
	EndPointGetMap           = "/get_map"

	EndPointLeaderboardZones     = "/leaderboard/zones"
	EndPointLeaderboardOrgTotals = "/leaderboard/org_totals"
	EndPointLeaderboardFastest   = "/leaderboard/fastest"
	EndPointLeaderboardPlaces    = "/leaderboard/places"
)

func main() {
	// Optional .env for local runs.
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := config.Load()

	log.Info("Starting the accessmap service...")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize services
	orgService := database.NewOrgService(db)
	zoneService := database.NewZoneService(db)
	reportService := database.NewReportService(db)
	moderationService := database.NewModerationService(db, cfg.SpamThreshold)
	boardService := leaderboard.NewService(reportService, zoneService)

	handler := handlers.New(reportService, zoneService, moderationService, orgService, boardService)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Org-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get())
	})
	router.GET(EndPointHealth, handler.HealthCheck)

	orgAuth := middleware.OrgAuth(orgService)

	apiV3 := router.Group("/api/v3")
	{
		apiV3.POST(EndPointRegisterOrg, handler.RegisterOrg)

		apiV3.POST(EndPointSubmitReport, handler.SubmitReport)
		apiV3.GET(EndPointGetReport, handler.GetReport)
		apiV3.GET(EndPointGetReports, handler.GetReports)
		apiV3.DELETE(EndPointDeleteReport, handler.DeleteReport)
		apiV3.POST(EndPointAddComment, handler.AddComment)
		apiV3.POST(EndPointLikeComment, handler.LikeComment)
		apiV3.POST(EndPointSetTrust, handler.SetTrust)
		apiV3.POST(EndPointSetOfficialResponse, orgAuth, handler.SetOfficialResponse)

		apiV3.POST(EndPointSetVerified, orgAuth, handler.SetVerified)
		apiV3.POST(EndPointSetSpam, orgAuth, handler.SetSpam)
		apiV3.POST(EndPointSetUserSpam, orgAuth, handler.SetUserSpam)
		apiV3.GET(EndPointGetUserStatus, handler.GetUserStatus)

		apiV3.POST(EndPointCreateZone, orgAuth, handler.CreateZone)
		apiV3.POST(EndPointUpdateZone, orgAuth, handler.UpdateZone)
		apiV3.DELETE(EndPointDeleteZone, orgAuth, handler.DeleteZone)
		apiV3.GET(EndPointGetZones, handler.GetZones)
		apiV3.GET(EndPointGetZonesCount, handler.GetZonesCount)

		apiV3.GET(EndPointZonesContaining, handler.ZonesContaining)
		apiV3.GET(EndPointReportsInZone, handler.ReportsInZone)
		apiV3.GET(EndPointReportsInAnyZone, handler.ReportsInAnyZone)
		apiV3.GET(EndPointGetMap, handler.GetMap)

		apiV3.GET(EndPointLeaderboardZones, orgAuth, handler.LeaderboardZones)
		apiV3.GET(EndPointLeaderboardOrgTotals, handler.LeaderboardOrgTotals)
		apiV3.GET(EndPointLeaderboardFastest, handler.LeaderboardFastest)
		apiV3.GET(EndPointLeaderboardPlaces, handler.LeaderboardPlaces)
	}

	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	log.Infof("Accessmap service starting on port %d (spam threshold %d)", serverPort, cfg.SpamThreshold)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
