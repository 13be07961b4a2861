package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/skyward/skyguide/pkg/analyze"
	"github.com/skyward/skyguide/pkg/config"
	"github.com/skyward/skyguide/pkg/logger"
	"github.com/skyward/skyguide/pkg/store"
)

func runAnalyze(cfg *config.Config, log *logger.Logger, imagePath, language string) error {
	if imagePath == "" {
		return errors.New("analyze mode requires -image")
	}
	if cfg.Analyze == nil || cfg.Analyze.BaseURL == "" {
		return errors.New("no analysis backend configured")
	}
	if language == "" {
		language = cfg.Analyze.Language
	}

	client := analyze.NewClient(cfg.Analyze.BaseURL, analyze.WithLogger(log))
	ctx := context.Background()

	progress, err := client.Analyze(ctx, imagePath, language)
	if err != nil {
		return err
	}
	defer progress.Close()

	for {
		ev, err := progress.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if ev.Err != nil {
			return ev.Err
		}
		fmt.Printf("[%s]\n", ev.Stage)
	}

	result := progress.Result()
	if result.Title != "" {
		fmt.Println(result.Title)
	}
	for _, obj := range result.Objects {
		fmt.Printf("  - %s", obj.Name)
		if obj.Legend != "" {
			fmt.Printf(": %s", obj.Legend)
		}
		fmt.Println()
	}
	if result.Narration != "" {
		fmt.Println(result.Narration)
	}
	if result.AudioURL != "" {
		fmt.Println("audio:", result.AudioURL)
	}

	// Record the run so a later conversation can be linked back to it.
	st, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	sess := store.NewSession(result.Title)
	sess.AnalysisID = uuid.NewString()
	sess.UpdatedAt = time.Now().UTC()
	if err := st.Put(ctx, sess); err != nil {
		return err
	}
	log.Info("analysis session %s recorded (analysis %s)", sess.LocalID, sess.AnalysisID)
	return nil
}
