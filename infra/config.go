package infra

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		AppVersion string `yaml:"app_version"`
	} `yaml:"app"`
	Storage struct {
		// "mongo" (default) or "memory" for local development without a DB.
		Backend string `yaml:"backend"`
	} `yaml:"storage"`
	MongoDB struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongodb"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	JWT struct {
		SecretKey    string `yaml:"secret_key"`
		ExpiresHours int    `yaml:"expires_hours"`
	} `yaml:"jwt"`
	Auth struct {
		// Access passwords per role; the panel login is a shared
		// password per role, not an account system.
		MasterPassword    string `yaml:"master_password"`
		AdmPassword       string `yaml:"adm_password"`
		MotoristaPassword string `yaml:"motorista_password"`
	} `yaml:"auth"`
	CertBaseURL string `yaml:"cert_base_url"`
}

var AppConfig Config

func LoadConfig() error {
	f, err := os.Open("config.yml")
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&AppConfig)
	if err != nil {
		return err
	}
	applyConfigDefaults()
	return nil
}

func applyConfigDefaults() {
	if AppConfig.Storage.Backend == "" {
		AppConfig.Storage.Backend = "mongo"
	}
	if AppConfig.JWT.ExpiresHours <= 0 {
		AppConfig.JWT.ExpiresHours = 12
	}
	if AppConfig.Auth.MasterPassword == "" {
		AppConfig.Auth.MasterPassword = "master123"
	}
	if AppConfig.Auth.AdmPassword == "" {
		AppConfig.Auth.AdmPassword = "adm123"
	}
	if AppConfig.Auth.MotoristaPassword == "" {
		AppConfig.Auth.MotoristaPassword = "123"
	}
}
