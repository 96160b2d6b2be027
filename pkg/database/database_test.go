package database_test

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/guarayo/cuentos/pkg/database"
	"github.com/guarayo/cuentos/pkg/lifecycle"
)

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestStartUnreachable(t *testing.T) {
	cfg := database.Config{
		Host:            "127.0.0.1",
		Port:            closedPort(t),
		Name:            "cuentos",
		User:            "cuentos",
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: "1m",
		ConnTimeout:     "1200ms",
	}

	db, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	db.Require("stories")

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	started := time.Now()
	lc.WaitForStartup()

	if lc.Ready() {
		t.Fatal("coordinator ready with an unreachable database")
	}
	if !errors.Is(lc.Err(), database.ErrNotReady) {
		t.Errorf("Err() = %v, want ErrNotReady", lc.Err())
	}
	if elapsed := time.Since(started); elapsed < time.Second {
		t.Errorf("startup gave up after %v, want retries until the connect timeout", elapsed)
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}
