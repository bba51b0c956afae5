package smtp_client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromFile(t *testing.T) {
	content := `
servers:
  - host: localhost
    port: "2525"
    connections: 2
    auth:
      user: mailer
      password: secret
    sendTimeout: 5
from: "ArcFlow <noreply@arcflow.example>"
replyTo: ["contato@arcflow.example"]
`
	fname := filepath.Join(t.TempDir(), "smtp.yaml")
	if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sl := SmtpServerList{}
	if err := sl.ReadFromFile(fname); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sl.Servers) != 1 || sl.Servers[0].Address() != "localhost:2525" {
		t.Errorf("unexpected servers: %+v", sl.Servers)
	}
	if sl.Servers[0].AuthData.Username != "mailer" {
		t.Errorf("auth not read: %+v", sl.Servers[0].AuthData)
	}

	env := map[string]string{"SMTP_PASSWORD_FOR_LOCALHOST": "from-env"}
	if n := sl.ApplyPasswordOverrides(func(k string) string { return env[k] }); n != 1 {
		t.Errorf("expected one override, got %d", n)
	}
	if sl.Servers[0].AuthData.Password != "from-env" {
		t.Error("password not overridden")
	}
}

func TestValidateServerList(t *testing.T) {
	tests := []struct {
		name    string
		list    SmtpServerList
		wantErr bool
	}{
		{name: "no servers", list: SmtpServerList{From: "a@b.c"}, wantErr: true},
		{name: "no from", list: SmtpServerList{Servers: []SmtpServer{{Host: "h", Port: "25"}}}, wantErr: true},
		{name: "bad port", list: SmtpServerList{From: "a@b.c", Servers: []SmtpServer{{Host: "h", Port: "smtp"}}}, wantErr: true},
		{name: "ok", list: SmtpServerList{From: "a@b.c", Servers: []SmtpServer{{Host: "h", Port: "25"}}}, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.list.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildEmail(t *testing.T) {
	sc := &SmtpClients{servers: SmtpServerList{
		From:    "office@arcflow.example",
		Sender:  "sender@arcflow.example",
		ReplyTo: []string{"reply@arcflow.example"},
	}}

	e := sc.buildEmail([]string{"a@b.c"}, "subject", "<p>hi</p>", nil)
	if e.From != "office@arcflow.example" || len(e.ReplyTo) != 1 || e.Headers.Get("Sender") != "sender@arcflow.example" {
		t.Errorf("unexpected email: %+v", e)
	}

	e = sc.buildEmail([]string{"a@b.c"}, "subject", "<p>hi</p>", &HeaderOverrides{From: "other@arcflow.example", NoReplyTo: true})
	if e.From != "other@arcflow.example" || len(e.ReplyTo) != 0 {
		t.Errorf("overrides not applied: %+v", e)
	}
}

func TestNewSmtpClientsWithoutServers(t *testing.T) {
	if _, err := NewSmtpClients(SmtpServerList{}); err == nil {
		t.Error("expected error without servers")
	}
}
