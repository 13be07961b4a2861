package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/skyward/skyguide/pkg/a2a"
	"github.com/skyward/skyguide/pkg/bridge"
	"github.com/skyward/skyguide/pkg/config"
	"github.com/skyward/skyguide/pkg/logger"
	"github.com/skyward/skyguide/pkg/store"
)

// resolveSession loads the requested session, falls back to the most recent
// main session, and finally starts a fresh one.
func resolveSession(ctx context.Context, st store.SessionStore, sessionID string) (*store.PersistedSession, error) {
	if sessionID != "" {
		return st.Get(ctx, sessionID)
	}
	sess, err := st.QueryLatestMain(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return store.NewSession("sky tour"), nil
	}
	return sess, err
}

func newBridge(cfg *config.Config, log *logger.Logger, st store.SessionStore, sess *store.PersistedSession) *bridge.Bridge {
	client := a2a.NewClient(cfg.Agent.BaseURL, a2a.WithLogger(log))
	return bridge.New(client,
		bridge.WithLogger(log),
		bridge.WithInitialContext(cfg.Agent.InitialContext),
		bridge.WithUpdateHook(func(u bridge.Update) {
			sess.ContextID = u.ContextID
			sess.TaskIDs = u.TaskIDs
			sess.UpdatedAt = u.UpdatedAt
			if err := st.Put(context.Background(), sess); err != nil {
				log.Error("persist session %s: %v", sess.LocalID, err)
			}
		}),
	)
}

func runChat(cfg *config.Config, log *logger.Logger, sessionID string, prompts []string) error {
	st, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	sess, err := resolveSession(ctx, st, sessionID)
	if err != nil {
		return err
	}

	br := newBridge(cfg, log, st, sess)
	defer br.Close()

	if len(sess.TaskIDs) > 0 {
		if br.RestoreHistory(ctx, sess.TaskIDs, sess.ContextID) {
			printTranscript(br.Transcript())
		} else {
			log.Warn("could not restore history for session %s, starting fresh", sess.LocalID)
		}
	}

	if len(prompts) > 0 {
		for _, prompt := range prompts {
			if err := sendPrompt(ctx, br, prompt); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := scanner.Text()
		if text != "" {
			if err := sendPrompt(ctx, br, text); err != nil {
				return err
			}
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func sendPrompt(ctx context.Context, br *bridge.Bridge, text string) error {
	stream, err := br.SendMessage(ctx, text)
	if err != nil {
		return err
	}
	for it := range stream.Iterator(ctx) {
		if delta, ok := it.Value.(bridge.DeltaEvent); ok {
			fmt.Print(delta.Text)
		}
	}
	result := <-stream.Result()
	fmt.Println()
	return result.Err
}

func printTranscript(transcript []bridge.TranscriptEntry) {
	for _, entry := range transcript {
		label := "You"
		if entry.Role == a2a.RoleAgent {
			label = "Guide"
		}
		fmt.Printf("%s: %s\n", label, entry.Text)
	}
}
