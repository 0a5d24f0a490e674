// Package server provides the HTTP handler and listener hosting the application.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gofu/webnav/config"
	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/dataset/sqlitestore"
	"golang.org/x/sync/errgroup"
)

// ListenAndServe starts an HTTP server on the configured address, serving
// the application under the configured base path. Canceling ctx stops the
// server, and returns ctx.Err().
func ListenAndServe(ctx context.Context, conf config.Server) error {
	conf, err := conf.Validate()
	if err != nil {
		return err
	}
	store, closeStore, err := OpenStore(conf)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	handler, sessions, err := NewServeMux(conf, store)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", conf.Addr)
	if err != nil {
		return err
	}
	log.Printf("Listening on http://%s%s", ln.Addr(), conf.BaseURL)
	group, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	group.Go(func() error {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-ctx.Done()
		_ = srv.Close()
		return ctx.Err()
	})
	group.Go(func() error {
		return sessions.Run(ctx, pruneInterval(conf.SessionTTL), conf.SessionTTL)
	})
	return group.Wait()
}

// OpenStore opens the SQLite database configured by conf, or returns
// an in-memory store if none is. The returned func closes the store.
func OpenStore(conf config.Server) (dataset.Store, func() error, error) {
	if len(conf.Database) == 0 {
		log.Printf("No database configured, uploads are kept in memory")
		return &dataset.MemStore{}, func() error { return nil }, nil
	}
	s, err := sqlitestore.Open(conf.Database)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func pruneInterval(ttl time.Duration) time.Duration {
	if i := ttl / 4; i > time.Second {
		return i
	}
	return time.Second
}
