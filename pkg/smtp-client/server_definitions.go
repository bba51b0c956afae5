package smtp_client

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/arcflow/arcflow-backend/pkg/utils"
	"gopkg.in/yaml.v2"
)

// SmtpServerList is the smtp server config file: the servers used in round
// robin order plus the default sender headers.
type SmtpServerList struct {
	Servers []SmtpServer `yaml:"servers"`
	From    string       `yaml:"from"`
	Sender  string       `yaml:"sender"`
	ReplyTo []string     `yaml:"replyTo"`
}

type SmtpAuth struct {
	Username string `yaml:"user"`
	Password string `yaml:"password"`
}

type SmtpServer struct {
	Host               string   `yaml:"host"`
	Port               string   `yaml:"port"`
	Connections        int      `yaml:"connections"`
	InsecureSkipVerify bool     `yaml:"insecureSkipVerify"`
	AuthData           SmtpAuth `yaml:"auth"`
	// seconds
	SendTimeout int `yaml:"sendTimeout"`
}

func (s *SmtpServer) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ReadFromFile loads and checks a server list.
func (sl *SmtpServerList) ReadFromFile(fname string) error {
	content, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("reading smtp server config: %w", err)
	}
	if err := yaml.UnmarshalStrict(content, sl); err != nil {
		return fmt.Errorf("parsing smtp server config %s: %w", fname, err)
	}
	return sl.Validate()
}

func (sl *SmtpServerList) Validate() error {
	if len(sl.Servers) == 0 {
		return fmt.Errorf("no smtp servers defined")
	}
	if sl.From == "" {
		return fmt.Errorf("from address is required")
	}
	for i, s := range sl.Servers {
		if s.Host == "" {
			return fmt.Errorf("server %d: host is required", i)
		}
		if _, err := strconv.Atoi(s.Port); err != nil {
			return fmt.Errorf("server %s: invalid port %q", s.Host, s.Port)
		}
	}
	return nil
}

// ApplyPasswordOverrides replaces server passwords with the values of
// SMTP_PASSWORD_FOR_<HOST> variables returned by getenv, when set.
func (sl *SmtpServerList) ApplyPasswordOverrides(getenv func(string) string) int {
	applied := 0
	for i := range sl.Servers {
		if password := getenv(utils.GenerateSmtpPasswordEnvVarName(sl.Servers[i].Host)); password != "" {
			sl.Servers[i].AuthData.Password = password
			applied++
		}
	}
	return applied
}
