// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer blocks in ListenAndServe until Shutdown is called or a
// preset error is delivered.
type mockServer struct {
	listenErr chan error
	shutdown  chan struct{}

	shutdownErr    error
	shutdownCalled bool
}

func newMockServer() *mockServer {
	return &mockServer{
		listenErr: make(chan error, 1),
		shutdown:  make(chan struct{}),
	}
}

func (m *mockServer) ListenAndServe() error {
	select {
	case err := <-m.listenErr:
		return err
	case <-m.shutdown:
		return http.ErrServerClosed
	}
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdownCalled = true
	close(m.shutdown)
	return m.shutdownErr
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	srv := newMockServer()
	svc := NewHTTPServerService(srv, "test-server", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Give the serve goroutine a moment to start listening.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if !srv.shutdownCalled {
		t.Error("Shutdown was not called on context cancel")
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	srv := newMockServer()
	srv.listenErr <- errors.New("bind: address already in use")
	svc := NewHTTPServerService(srv, "test-server", time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected a listen error")
	}
	if srv.shutdownCalled {
		t.Error("Shutdown should not run when listen fails")
	}
}

func TestHTTPServerServiceDefaults(t *testing.T) {
	svc := NewHTTPServerService(newMockServer(), "", 0)
	if svc.String() != "http-server" {
		t.Errorf("default name = %q, want http-server", svc.String())
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v, want 10s", svc.shutdownTimeout)
	}
}
