package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"loglens/internal/config"
	"loglens/internal/index"
	"loglens/internal/server/api"
	"loglens/internal/service"
	"loglens/internal/session"
	"loglens/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger.Init(logrus.InfoLevel)
	log := logger.New("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	sess := session.New()

	// The server starts even when the agent cannot be built, so operators
	// can reach /api/status and /api/config to diagnose the problem.
	agent := buildAgent(cfg, sess, log)

	apiHandler := api.NewAPI(agent, cfg, log)
	router := gin.Default()
	api.RegisterRoutes(router, apiHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info(fmt.Sprintf("listening on %s", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal(fmt.Sprintf("Server failed: %v", err))
	}
}

// buildAgent validates credentials and connects to the vector index. Any
// failure is logged and leaves the service in a degraded, diagnosable state
// instead of exiting.
func buildAgent(cfg *config.AppConfig, sess *session.Session, log *logger.Logger) *service.Agent {
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("configuration incomplete, agent disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager, err := index.NewManager(ctx, &cfg.Milvus, cfg.IndexNameOverridden(), log)
	if err != nil {
		log.WithError(err).Error(fmt.Sprintf("could not connect to Milvus at %s, agent disabled", cfg.Milvus.Address))
		return nil
	}

	log.Info(fmt.Sprintf("agent ready: provider=%s model=%s", cfg.Embedding.Provider, cfg.Groq.Model))
	return service.New(cfg, sess, manager, log)
}
