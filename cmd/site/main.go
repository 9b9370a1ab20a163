//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/apiclient"
	"gitlab.com/dirk.krummacker/static-website/internal/config"
	"gitlab.com/dirk.krummacker/static-website/internal/dom"
	"gitlab.com/dirk.krummacker/static-website/internal/logging"
	"gitlab.com/dirk.krummacker/static-website/internal/site"
	"gitlab.com/dirk.krummacker/static-website/internal/storage"
)

// Set at build time, e.g.
// > GOOS=js GOARCH=wasm go build -ldflags "-X main.apiBaseURL=https://abc123.execute-api.us-east-1.amazonaws.com/dev" -o site.wasm
var (
	apiBaseURL     = "http://localhost:8080"
	fallbackPolicy = config.PolicyLocal
	logLevel       = "info"
)

func main() {
	logger, err := logging.NewConsole(logLevel)
	if err != nil {
		logger = zap.NewNop()
	}
	doc := dom.NewDocument()

	opts := site.Options{
		Submitter: apiclient.New(apiBaseURL),
		Logger:    logger,
	}
	if fallbackPolicy == config.PolicyLocal {
		if ls, err := dom.NewLocalStorage(); err == nil {
			opts.Fallback = storage.NewSubmissions(ls)
		} else {
			logger.Warn("no local fallback", zap.Error(err))
		}
	}
	s := site.Wire(context.Background(), doc, opts)

	// The page markup opens the dialog through onclick="showInfrastructureInfo()".
	js.Global().Set("showInfrastructureInfo", js.FuncOf(func(this js.Value, args []js.Value) any {
		s.Modal.Show()
		return nil
	}))
	js.Global().Set("closeInfrastructureInfo", js.FuncOf(func(this js.Value, args []js.Value) any {
		s.Modal.Close()
		return nil
	}))

	logger.Info("site ready", zap.String("api", apiBaseURL), zap.String("fallback", fallbackPolicy))
	select {}
}
