package main

import (
	"context"
	"errors"

	"github.com/skyward/skyguide/pkg/config"
	"github.com/skyward/skyguide/pkg/logger"
	"github.com/skyward/skyguide/pkg/store"
)

func runRestore(cfg *config.Config, log *logger.Logger, sessionID string) error {
	st, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	var sess *store.PersistedSession
	if sessionID != "" {
		sess, err = st.Get(ctx, sessionID)
	} else {
		sess, err = st.QueryLatestMain(ctx)
	}
	if err != nil {
		return err
	}
	if len(sess.TaskIDs) == 0 {
		return errors.New("session has no recorded tasks")
	}

	br := newBridge(cfg, log, st, sess)
	defer br.Close()

	if !br.RestoreHistory(ctx, sess.TaskIDs, sess.ContextID) {
		return errors.New("no tasks could be recovered")
	}
	printTranscript(br.Transcript())
	return nil
}
