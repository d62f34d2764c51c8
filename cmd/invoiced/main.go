package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/apl83/invoice-nlp/internal/common"
	"github.com/apl83/invoice-nlp/internal/feedback"
	"github.com/apl83/invoice-nlp/internal/nlp"
	"github.com/apl83/invoice-nlp/internal/ocr"
	"github.com/apl83/invoice-nlp/internal/pending"
	"github.com/apl83/invoice-nlp/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	var recognizer nlp.EntityRecognizer
	modelClient, modelErr := nlp.NewClient(nlp.ClientConfig{
		BaseURL: cfg.Model.BaseURL,
		Token:   cfg.Model.Token,
		Timeout: cfg.Model.Timeout,
	}, logger)
	if modelErr != nil {
		logger.Warn("NLP model unavailable, extraction will return 503", "error", modelErr)
	} else {
		recognizer = modelClient
	}

	store, err := pending.NewStore(cfg.Pending.Dir, cfg.Pending.Retention, logger)
	if err != nil {
		logger.Error("init pending store", "error", err)
		os.Exit(1)
	}

	sink, err := feedback.NewSink(cfg.Feedback.Dir, logger)
	if err != nil {
		logger.Error("init feedback sink", "error", err)
		os.Exit(1)
	}

	api := server.New(cfg.Server.APIToken, engine, recognizer, modelErr, store, sink, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}
