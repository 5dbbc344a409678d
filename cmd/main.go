package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"directorassist/internal/ai"
	"directorassist/internal/config"
	"directorassist/internal/database"
	"directorassist/internal/handler"
	"directorassist/internal/middleware"
	"directorassist/internal/monitoring"
	"directorassist/internal/repository"
	"directorassist/internal/service"
	"directorassist/internal/store"
)

// Version du service (à définir lors du build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Initialisation du logger
	initLogger()

	logrus.WithFields(logrus.Fields{
		"service":    "director-assist",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("🎲 Starting Director Assist Service...")

	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	// Connexion à la base de données
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Initialisation des repositories
	combatRepo := repository.NewCombatRepository(db)
	montageRepo := repository.NewMontageRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	chatRepo := repository.NewChatRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Store réactif des sessions de combat
	combatStore := store.NewCombatStore(combatRepo)
	if err := combatStore.LoadCombats(); err != nil {
		logrus.Fatal("Failed to load combat sessions: ", err)
	}

	// Registre des fournisseurs de génération IA
	registry, err := ai.NewRegistry(cfg.AI)
	if err != nil {
		logrus.Fatal("Failed to initialize AI providers: ", err)
	}

	// Services
	realtimeService := service.NewRealtimeService(combatStore)
	if err := realtimeService.Start(); err != nil {
		logrus.Fatal("Failed to start realtime service: ", err)
	}
	backupService := service.NewBackupService(combatRepo, montageRepo, entityRepo, chatRepo, settingsRepo, combatStore)

	// Monitoring
	metrics := monitoring.NewMetrics()
	healthChecker := monitoring.NewHealthChecker(db)

	// Handlers
	combatHandler := handler.NewCombatHandler(combatStore)
	montageHandler := handler.NewMontageHandler(montageRepo)
	entityHandler := handler.NewEntityHandler(entityRepo)
	chatHandler := handler.NewChatHandler(chatRepo)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	backupHandler := handler.NewBackupHandler(backupService)
	aiHandler := handler.NewAIHandler(registry, chatRepo, settingsRepo, cfg.AI.RequestTimeout)
	wsHandler := handler.NewWebSocketHandler(realtimeService)

	// Configuration du mode Gin
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	router := setupRoutes(
		combatHandler,
		montageHandler,
		entityHandler,
		chatHandler,
		settingsHandler,
		backupHandler,
		aiHandler,
		wsHandler,
		healthChecker,
		metrics,
		cfg,
	)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("🎲 Director Assist Service started successfully")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server, realtimeService, combatStore)
}

// setupRoutes configure toutes les routes du service Director Assist
func setupRoutes(
	combatHandler *handler.CombatHandler,
	montageHandler *handler.MontageHandler,
	entityHandler *handler.EntityHandler,
	chatHandler *handler.ChatHandler,
	settingsHandler *handler.SettingsHandler,
	backupHandler *handler.BackupHandler,
	aiHandler *handler.AIHandler,
	wsHandler *handler.WebSocketHandler,
	healthChecker *monitoring.HealthChecker,
	metrics *monitoring.Metrics,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(metrics.Middleware())

	// Rate limiting global si configuré
	if cfg.RateLimit.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	// Routes de santé et monitoring (sans auth)
	router.GET(cfg.Monitoring.HealthPath, healthChecker.HealthCheck)
	router.GET("/ready", healthChecker.ReadinessCheck)
	router.GET("/live", healthChecker.LivenessCheck)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))

	// Flux temps réel des sessions de combat; le token est facultatif,
	// les clients authentifiés sont identifiés dans les logs du hub
	router.GET("/ws", middleware.OptionalAuthMiddleware(cfg), wsHandler.HandleWebSocket)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Routes protégées (authentification JWT requise)
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			// Sessions de combat
			combat := protected.Group("/combat-sessions")
			{
				combat.POST("", combatHandler.CreateSession)
				combat.GET("", combatHandler.ListSessions)
				combat.GET("/selected", combatHandler.GetSelectedSession)
				combat.DELETE("/selected", combatHandler.ClearSelectedSession)
				combat.GET("/:sessionId", combatHandler.GetSession)
				combat.PUT("/:sessionId", combatHandler.UpdateSession)
				combat.DELETE("/:sessionId", combatHandler.DeleteSession)

				// Cycle de vie
				combat.POST("/:sessionId/start", combatHandler.StartSession)
				combat.POST("/:sessionId/pause", combatHandler.PauseSession)
				combat.POST("/:sessionId/resume", combatHandler.ResumeSession)
				combat.POST("/:sessionId/end", combatHandler.EndSession)
				combat.POST("/:sessionId/reopen", combatHandler.ReopenSession)

				// Combattants
				combat.POST("/:sessionId/combatants", combatHandler.AddCombatant)
				combat.POST("/:sessionId/combatants/quick", combatHandler.AddQuickCombatant)
				combat.PUT("/:sessionId/combatants/:combatantId", combatHandler.UpdateCombatant)
				combat.DELETE("/:sessionId/combatants/:combatantId", combatHandler.RemoveCombatant)
				combat.POST("/:sessionId/combatants/:combatantId/move", combatHandler.MoveCombatant)

				// Initiative et tours
				combat.POST("/:sessionId/combatants/:combatantId/initiative", combatHandler.SetInitiative)
				combat.POST("/:sessionId/combatants/:combatantId/initiative/roll", combatHandler.RollInitiative)
				combat.POST("/:sessionId/initiative/roll-all", combatHandler.RollInitiativeForAll)
				combat.POST("/:sessionId/turns/next", combatHandler.NextTurn)
				combat.POST("/:sessionId/turns/previous", combatHandler.PreviousTurn)

				// Points de vie
				combat.POST("/:sessionId/combatants/:combatantId/damage", combatHandler.ApplyDamage)
				combat.POST("/:sessionId/combatants/:combatantId/heal", combatHandler.ApplyHealing)
				combat.POST("/:sessionId/combatants/:combatantId/temp-hp", combatHandler.AddTemporaryHP)

				// Conditions
				combat.POST("/:sessionId/combatants/:combatantId/conditions", combatHandler.AddCondition)
				combat.DELETE("/:sessionId/combatants/:combatantId/conditions/:conditionName", combatHandler.RemoveCondition)

				// Ressources de groupe
				combat.POST("/:sessionId/victory-points/add", combatHandler.AddVictoryPoints)
				combat.POST("/:sessionId/victory-points/remove", combatHandler.RemoveVictoryPoints)
				combat.POST("/:sessionId/hero-points/add", combatHandler.AddHeroPoints)
				combat.POST("/:sessionId/hero-points/spend", combatHandler.SpendHeroPoint)

				// Journal de combat
				combat.POST("/:sessionId/log", combatHandler.AddLogEntry)
				combat.POST("/:sessionId/log/power-roll", combatHandler.LogPowerRoll)
			}

			// Sessions de montage
			montages := protected.Group("/montages")
			{
				montages.POST("", montageHandler.CreateMontage)
				montages.GET("", montageHandler.ListMontages)
				montages.GET("/:montageId", montageHandler.GetMontage)
				montages.DELETE("/:montageId", montageHandler.DeleteMontage)
				montages.POST("/:montageId/success", montageHandler.RecordSuccess)
				montages.POST("/:montageId/failure", montageHandler.RecordFailure)
				montages.POST("/:montageId/rounds/advance", montageHandler.AdvanceRound)
				montages.POST("/:montageId/complete", montageHandler.CompleteMontage)
				montages.POST("/:montageId/reopen", montageHandler.ReopenMontage)
			}

			// Entités de campagne
			entities := protected.Group("/entities")
			{
				entities.POST("", entityHandler.CreateEntity)
				entities.GET("", entityHandler.ListEntities)
				entities.GET("/:entityId", entityHandler.GetEntity)
				entities.PUT("/:entityId", entityHandler.UpdateEntity)
				entities.DELETE("/:entityId", entityHandler.DeleteEntity)
			}

			// Historique de conversation
			chat := protected.Group("/chat")
			{
				chat.POST("/messages", chatHandler.CreateMessage)
				chat.GET("/messages", chatHandler.ListMessages)
				chat.GET("/messages/:messageId", chatHandler.GetMessage)
				chat.DELETE("/messages/:messageId", chatHandler.DeleteMessage)
				chat.DELETE("/messages", chatHandler.ClearHistory)
			}

			// Réglages
			settings := protected.Group("/settings")
			{
				settings.GET("", settingsHandler.ListSettings)
				settings.GET("/:key", settingsHandler.GetSetting)
				settings.PUT("/:key", settingsHandler.SetSetting)
				settings.DELETE("/:key", settingsHandler.DeleteSetting)
			}

			// Sauvegarde et restauration
			backup := protected.Group("/backup")
			{
				backup.GET("/export", backupHandler.Export)
				backup.POST("/import", middleware.RequireRole("director", "admin"), backupHandler.Import)
			}

			// Génération IA, limitée séparément du reste de l'API
			generate := protected.Group("/ai")
			generate.Use(middleware.AIRateLimit(20))
			{
				generate.POST("/generate", aiHandler.Generate)
			}
		}
	}

	return router
}

// initLogger initialise le système de logging
func initLogger() {
	// Configuration du format de log selon l'environnement
	if os.Getenv("SERVER_ENVIRONMENT") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.SetOutput(os.Stdout)
}

// gracefulShutdown gère l'arrêt gracieux du service
func gracefulShutdown(
	server *http.Server,
	realtimeService service.RealtimeServiceInterface,
	combatStore *store.CombatStore,
) {
	// Canal pour recevoir les signaux d'interruption
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("🎲 Director Assist Service is shutting down...")

	// Timeout pour l'arrêt gracieux
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Arrêter les nouvelles connexions
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	// Fermer les connexions WebSocket restantes
	if err := realtimeService.Stop(); err != nil {
		logrus.WithError(err).Warn("Failed to stop realtime service cleanly")
	}

	if active := combatStore.ActiveCombats(); len(active) > 0 {
		logrus.WithField("active_combats", len(active)).Warn("Shutting down with active combat sessions")
	}

	logrus.Info("🎲 Director Assist Service stopped gracefully")
}
