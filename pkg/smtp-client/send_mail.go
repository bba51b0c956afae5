package smtp_client

import (
	"errors"
	"log/slog"
	"net/textproto"
	"sync/atomic"

	"github.com/knadh/smtppool"
)

// HeaderOverrides replace the sender settings of the server list for one mail.
type HeaderOverrides struct {
	From      string   `json:"from" yaml:"from"`
	Sender    string   `json:"sender" yaml:"sender"`
	ReplyTo   []string `json:"replyTo" yaml:"replyTo"`
	NoReplyTo bool     `json:"noReplyTo" yaml:"noReplyTo"`
}

func (sc *SmtpClients) buildEmail(to []string, subject string, htmlContent string, overrides *HeaderOverrides) smtppool.Email {
	from := sc.servers.From
	sender := sc.servers.Sender
	replyTo := sc.servers.ReplyTo

	if overrides != nil {
		if overrides.From != "" {
			from = overrides.From
		}
		if overrides.Sender != "" {
			sender = overrides.Sender
		}
		if overrides.NoReplyTo {
			replyTo = []string{}
		} else if len(overrides.ReplyTo) > 0 {
			replyTo = overrides.ReplyTo
		}
	}

	headers := textproto.MIMEHeader{}
	if sender != "" {
		headers.Set("Sender", sender)
	}
	return smtppool.Email{
		To:      to,
		From:    from,
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: headers,
	}
}

// SendMail sends an HTML mail through the pools in round robin order. A pool
// that fails is replaced by a fresh one for the next attempt.
func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	overrides *HeaderOverrides,
) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	sc.mu.Lock()
	if len(sc.connectionPool) < 1 {
		sc.connectionPool = initConnectionPool(sc.servers)
	}
	pools := len(sc.connectionPool)
	sc.mu.Unlock()
	if pools < 1 {
		return errors.New("no smtp server available")
	}

	index := int(atomic.AddUint64(&sc.counter, 1) % uint64(pools))
	sc.mu.Lock()
	selected := sc.connectionPool[index]
	sc.mu.Unlock()

	err := selected.pool.Send(sc.buildEmail(to, subject, htmlContent, overrides))
	if err != nil {
		slog.Error("error when trying to send email", slog.String("error", err.Error()), slog.String("server", selected.server.Address()))

		pool, errReconnect := connectToPool(selected.server)
		if errReconnect != nil {
			slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", selected.server.Host))
		} else {
			slog.Info("reconnected to pool", slog.String("server", selected.server.Host))
			selected.pool.Close()
			sc.mu.Lock()
			sc.connectionPool[index] = serverPool{server: selected.server, pool: pool}
			sc.mu.Unlock()
		}
	}
	return err
}
