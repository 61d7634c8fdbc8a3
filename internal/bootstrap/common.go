package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/logger"
	"github.com/sirupsen/logrus"
)

var (
	appLogger = logger.Discard()
	logCloser io.Closer
)

type operation func(ctx context.Context) error

// Init loads the configuration and builds the process logger. It runs before
// every command.
func Init(configPath string, overrides map[string]any) error {
	cfg, err := config.LoadConfig(configPath, overrides)
	if err != nil {
		return err
	}

	logCfg := cfg.Log
	if cfg.Env == constant.ProductionEnvironment {
		logCfg.Format = logger.FormatJSON
	}

	log, closer, err := logger.New(logCfg)
	if err != nil {
		return err
	}

	appLogger = log
	logCloser = closer
	return nil
}

// Close flushes the log file opened by Init.
func Close() {
	if logCloser == nil {
		return
	}
	_ = logCloser.Close()
	logCloser = nil
}

func Logger() *logrus.Logger {
	return appLogger
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", constant.JSONIndent)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

// gracefulShutdown waits for termination syscalls and doing clean up operations after received it.
func gracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]operation) <-chan struct{} {
	wait := make(chan struct{})
	go func() {
		s := make(chan os.Signal, 1)

		signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		<-s

		appLogger.Info("shutting down")

		// set timeout for the ops to be done to prevent system hang
		timeoutFunc := time.AfterFunc(timeout, func() {
			appLogger.Errorf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
			os.Exit(0)
		})

		defer timeoutFunc.Stop()

		var wg sync.WaitGroup

		for key, op := range ops {
			wg.Go(func() {
				appLogger.Infof("cleaning up: %s", key)
				if err := op(ctx); err != nil {
					appLogger.Errorf("%s: clean up failed: %s", key, err.Error())
					return
				}

				appLogger.Infof("%s was shutdown gracefully", key)
			})
		}

		wg.Wait()

		close(wait)
	}()

	return wait
}
