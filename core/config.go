package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "StudySitare")
	Conf.SetDefault("secretKey", "v#2y8_0m&+ujv1p(b$yp4x!d9d=a37nz^!0-7xh0p&a=j$p61f")
	Conf.SetDefault("serverAddress", ":8080")
	Conf.SetDefault("databasePath", "studysitare.db")
	Conf.SetDefault("shutdownTimeout", 20*time.Second)
	Conf.SetDefault("sessionExpirationDelta", 7*24*time.Hour)
	Conf.SetDefault("defaultFromEmail", "noreply@studysitare.com")
	Conf.SetDefault("seedAdminEmail", "admin@studysitare.com")
	Conf.SetDefault("seedAdminPassword", "admin123")
	Conf.SetDefault("sendgridApiKey", "")
	Conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		Conf.SetDefault("testMode", true)
	}
	Conf.SetDefault("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

// DefaultFromEmail is the sender address for all outgoing mail.
func DefaultFromEmail() mail.Address {
	return mail.Address{Name: Conf.GetString("appName"), Address: Conf.GetString("defaultFromEmail")}
}
