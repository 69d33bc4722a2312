// Package natsserver provides the embedded NATS server backing the task
// event bus.
package natsserver

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedNATS wraps an embedded NATS server with a client connection
type EmbeddedNATS struct {
	server *server.Server
	conn   *nats.Conn
}

// Config holds configuration for the embedded NATS server
type Config struct {
	Port int // -1 picks a random free port
}

// New creates and starts an embedded NATS server
func New(cfg Config) (*EmbeddedNATS, error) {
	if cfg.Port == 0 {
		cfg.Port = 4222
	}

	opts := &server.Options{
		Host:   "0.0.0.0",
		Port:   cfg.Port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS server: %w", err)
	}

	// Start server in background
	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		return nil, fmt.Errorf("NATS server not ready after 5 seconds")
	}

	// Internal client connection
	nc, err := nats.Connect(
		ns.ClientURL(),
		nats.Name("taskdesk-internal"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}

	log.Printf("📡 Embedded NATS server started at %s", ns.ClientURL())

	return &EmbeddedNATS{server: ns, conn: nc}, nil
}

// Conn returns the internal NATS connection
func (e *EmbeddedNATS) Conn() *nats.Conn {
	return e.conn
}

// Address returns the NATS server client URL
func (e *EmbeddedNATS) Address() string {
	return e.server.ClientURL()
}

// NumClients returns the number of connected clients
func (e *EmbeddedNATS) NumClients() int {
	return e.server.NumClients()
}

// Shutdown gracefully shuts down the NATS server
func (e *EmbeddedNATS) Shutdown() {
	if e.conn != nil {
		e.conn.Close()
	}
	if e.server != nil {
		e.server.Shutdown()
	}
	log.Println("📡 NATS server shut down")
}
