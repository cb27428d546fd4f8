package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/core"
	formrelayhttp "github.com/awantoch/formrelay/http"
	"github.com/awantoch/formrelay/logger"
)

func main() {
	path := os.Getenv(constants.EnvConfigPath)
	if path == "" {
		path = constants.ConfigFileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	svc, cleanup, err := core.InitializeDependencies(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize dependencies: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	lambda.Start(formrelayhttp.LambdaHandler(formrelayhttp.NewMux(svc)))
}
