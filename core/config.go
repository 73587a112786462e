package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName      string
	Build        string
	Env          string // DEV (local; default), TEST, QA, PROD
	Debug        bool
	TestMode     bool
	SecretKey    string
	RollbarToken string

	Server struct {
		Address            string
		Host               string
		DebugHost          string
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
		JWTExpirationDelta time.Duration
	}

	// Schedule points at the Course/Schedule Service.
	Schedule struct {
		BaseURL string
		Token   string
		Timeout time.Duration
		Demo    bool // serve from the in-memory backend instead of BaseURL
	}

	// Session bounds the attendance editing sessions kept by the API.
	Session struct {
		TTL        time.Duration
		MaxEntries int
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Kelasi")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("schedule.baseURL", "http://localhost:8080/api")
	v.SetDefault("schedule.token", "")
	v.SetDefault("schedule.timeout", 10*time.Second)
	v.SetDefault("schedule.demo", false)

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.maxEntries", 1024)
}

// NewConfig reads the configuration of the current environment.
// Values come from (by priority): `<ENV>_<KEY>` environment variables, `config/.env.<env>`, defaults.
// Nested keys use an underscore: DEV_SCHEDULE_BASEURL overrides `schedule.baseURL`.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("server.disableReqLogs", true)
		v.SetDefault("schedule.demo", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(ProjectRoot(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}

	conf.Server.Address = v.GetString("server.address")
	conf.Server.Host = v.GetString("server.host")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ReadTimeout = v.GetDuration("server.readTimeout")
	conf.Server.WriteTimeout = v.GetDuration("server.writeTimeout")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")

	conf.Schedule.BaseURL = strings.TrimRight(v.GetString("schedule.baseURL"), "/")
	conf.Schedule.Token = v.GetString("schedule.token")
	conf.Schedule.Timeout = v.GetDuration("schedule.timeout")
	conf.Schedule.Demo = v.GetBool("schedule.demo")

	conf.Session.TTL = v.GetDuration("session.ttl")
	conf.Session.MaxEntries = v.GetInt("session.maxEntries")

	return conf
}
