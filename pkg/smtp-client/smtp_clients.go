package smtp_client

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/knadh/smtppool"
)

type serverPool struct {
	server SmtpServer
	pool   *smtppool.Pool
}

type SmtpClients struct {
	mu             sync.Mutex
	servers        SmtpServerList
	connectionPool []serverPool
	counter        uint64
}

func NewSmtpClients(config SmtpServerList) (*SmtpClients, error) {
	if len(config.Servers) < 1 {
		return nil, errors.New("no smtp servers configured")
	}
	sc := &SmtpClients{
		servers:        config,
		connectionPool: initConnectionPool(config),
	}
	if len(sc.connectionPool) < 1 {
		return nil, errors.New("no smtp server connection in the pool")
	}
	return sc, nil
}

func (sc *SmtpClients) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, p := range sc.connectionPool {
		p.pool.Close()
	}
	sc.connectionPool = nil
}

func initConnectionPool(serverList SmtpServerList) []serverPool {
	connectionPools := []serverPool{}
	for _, server := range serverList.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool", slog.String("error", err.Error()), slog.String("server", server.Address()))
			continue
		}
		connectionPools = append(connectionPools, serverPool{server: server, pool: pool})
	}
	return connectionPools
}

func connectToPool(server SmtpServer) (*smtppool.Pool, error) {
	var auth smtp.Auth
	if server.AuthData.Username != "" || server.AuthData.Password != "" {
		auth = smtp.PlainAuth(
			"",
			server.AuthData.Username,
			server.AuthData.Password,
			server.Host,
		)
	}

	tlsOpts := &tls.Config{
		InsecureSkipVerify: server.InsecureSkipVerify,
		ServerName:         server.Host,
	}
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, err
	}

	connections := server.Connections
	if connections < 1 {
		connections = 1
	}
	timeout := time.Duration(server.SendTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        connections,
		IdleTimeout:     timeout,
		PoolWaitTimeout: timeout,
		TLSConfig:       tlsOpts,
		Auth:            auth,
	})
}
