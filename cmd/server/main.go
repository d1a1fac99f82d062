package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mediwise/carehub/internal/config"
	"github.com/mediwise/carehub/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	svc := bootstrap(cfg)
	defer svc.shutdown()

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	registerRoutes(r, svc)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Starting carehub server on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Server exited: %v", err)
	}
}
