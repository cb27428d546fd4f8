package http

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/core"
	"github.com/awantoch/formrelay/logger"
)

var (
	initServerless sync.Once
	initErr        error
	serverlessMux  *http.ServeMux
	muxMutex       sync.RWMutex
)

// configPath is the file serverless deployments read, overridable via env.
func configPath() string {
	if p := os.Getenv(constants.EnvConfigPath); p != "" {
		return p
	}
	return constants.ConfigFileName
}

// ServerlessHandler serves every route from a mux built once per process.
func ServerlessHandler(w http.ResponseWriter, r *http.Request) {
	initServerless.Do(func() {
		cfg, err := config.Load(configPath())
		if err != nil {
			initErr = err
			return
		}
		if cfg.Log.Level == "debug" {
			logger.SetMode("debug")
		}
		// Serverless instances are frozen, not shut down; nothing to clean up.
		svc, _, err := core.InitializeDependencies(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}
		muxMutex.Lock()
		serverlessMux = NewMux(svc)
		muxMutex.Unlock()
	})

	if initErr != nil {
		logger.ErrorCtx(r.Context(), "serverless initialization failed", "error", initErr)
		writeInternalError(w, initErr.Error())
		return
	}

	muxMutex.RLock()
	mux := serverlessMux
	muxMutex.RUnlock()
	if mux == nil {
		writeInternalError(w, "handler not initialized")
		return
	}
	mux.ServeHTTP(w, r)
}

// ResetServerlessMux forces the next request to rebuild the mux. Used by tests.
func ResetServerlessMux() {
	muxMutex.Lock()
	defer muxMutex.Unlock()
	initServerless = sync.Once{}
	initErr = nil
	serverlessMux = nil
}
