package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/apihelpers"
	mw "github.com/arcflow/arcflow-backend/pkg/apihelpers/middlewares"
	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/services/briefing-api/apihandlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var conf BriefingApiConfig

func main() {
	if smtpClients != nil {
		defer smtpClients.Close()
	}

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", mw.HeaderAPIKey, mw.HeaderOfficeID},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	var submissionNotifier apihandlers.SubmissionNotifier
	if notifier != nil {
		submissionNotifier = notifier
	}

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.OfficeUserJWTConfig.SignKey,
		briefingDBService,
		schemaRegistry,
		draftStore,
		catalog.Classifier(),
		submissionNotifier,
		conf.AllowedOfficeIDs,
		serviceAPIKeys(),
		listSeparator(),
		conf.GinConfig.MaxSchemaSize,
	)
	v1APIHandlers.AddSchemaAPI(v1Root)
	v1APIHandlers.AddSessionAPI(v1Root)
	v1APIHandlers.AddBriefingAPI(v1Root)

	if conf.GinConfig.DebugMode {
		if err := apihelpers.WriteRoutesToFile(router, "briefing-api-routes.txt"); err != nil {
			slog.Warn("failed to write routes file", slog.String("error", err.Error()))
		}
	}

	// Start the server
	slog.Info("Starting Briefing API", slog.String("port", conf.GinConfig.Port))
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Briefing API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Briefing API", slog.String("error", err.Error()))
			return
		}
	}
}
