/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"fmt"
	"time"

	"github.com/joho/godotenv" // go get github.com/joho/godotenv
	"github.com/spf13/viper"   // go get github.com/spf13/viper
)

/* RUNTIME SETTINGS - POPULATED ONCE BY ConfigInit( ) */
var (
	HTTP_ADDR            string
	CORS_ALLOWED_ORIGINS string

	DB_HOST string
	DB_PORT int
	DB_USER string
	DB_PW   string

	ADMIN_DB                   string
	FRP_DB                     string
	ADMIN_DB_CONNECTION_STRING string
	FRP_DB_CONNECTION_STRING   string

	MQTT_BROKER string
	MQTT_USER   string
	MQTT_PW     string

	JWT_SECRET             string
	JWT_EXPIRED_IN         time.Duration
	JWT_REFRESH_EXPIRED_IN time.Duration

	REDIS_ENABLED bool
	REDIS_ADDR    string
	REDIS_PW      string

	INFLUX_ENABLED bool
	INFLUX_URL     string
	INFLUX_TOKEN   string
	INFLUX_ORG     string
	INFLUX_BUCKET  string

	SPR_USER  string
	SPR_EMAIL string
	SPR_PW    string

	DEVICE_INACTIVE_AFTER time.Duration
	DEVICE_LOST_AFTER     time.Duration
	WATCHDOG_PERIOD       time.Duration
)

func ConnStrForDB(db_name string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", DB_USER, DB_PW, DB_HOST, DB_PORT, db_name)
}

/*
READ SETTINGS FROM config.yaml AND THE ENVIRONMENT

A MISSING CONFIG FILE IS NOT AN ERROR; DEFAULTS AND ENV VARS STILL APPLY
*/
func ConfigInit() (err error) {

	/* LOCAL DEVELOPMENT -> .env OVERRIDES NOTHING ONCE DEPLOYED */
	godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/frp")
	v.SetEnvPrefix("FRP")
	v.AutomaticEnv()

	v.SetDefault("http.addr", "127.0.0.1:8007")
	v.SetDefault("http.cors_origins", "http://localhost:8080, http://localhost:5173")

	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "terralab")
	v.SetDefault("db.pw", "terralab")
	v.SetDefault("db.admin_name", "postgres")
	v.SetDefault("db.frp_name", "frp")

	v.SetDefault("mqtt.broker", "tcp://127.0.0.1:1883")
	v.SetDefault("mqtt.user", "frp")
	v.SetDefault("mqtt.pw", "frp")

	v.SetDefault("jwt.secret", "dev-secret-do-not-deploy")
	v.SetDefault("jwt.exp_min", 15)
	v.SetDefault("jwt.refresh_exp_hour", 72)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.pw", "")

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://127.0.0.1:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "terralab")
	v.SetDefault("influx.bucket", "field_data")

	v.SetDefault("super.user", "super")
	v.SetDefault("super.email", "super@terralab.edu")
	v.SetDefault("super.pw", "superuser123")

	v.SetDefault("watchdog.period_sec", 60)
	v.SetDefault("watchdog.inactive_after_min", 60)
	v.SetDefault("watchdog.lost_after_min", 1440)

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return LogErr(err)
		}
		err = nil
	}

	HTTP_ADDR = v.GetString("http.addr")
	CORS_ALLOWED_ORIGINS = v.GetString("http.cors_origins")

	DB_HOST = v.GetString("db.host")
	DB_PORT = v.GetInt("db.port")
	DB_USER = v.GetString("db.user")
	DB_PW = v.GetString("db.pw")
	ADMIN_DB = v.GetString("db.admin_name")
	FRP_DB = v.GetString("db.frp_name")
	ADMIN_DB_CONNECTION_STRING = ConnStrForDB(ADMIN_DB)
	FRP_DB_CONNECTION_STRING = ConnStrForDB(FRP_DB)

	MQTT_BROKER = v.GetString("mqtt.broker")
	MQTT_USER = v.GetString("mqtt.user")
	MQTT_PW = v.GetString("mqtt.pw")

	JWT_SECRET = v.GetString("jwt.secret")
	JWT_EXPIRED_IN = time.Duration(v.GetInt("jwt.exp_min")) * time.Minute
	JWT_REFRESH_EXPIRED_IN = time.Duration(v.GetInt("jwt.refresh_exp_hour")) * time.Hour

	REDIS_ENABLED = v.GetBool("redis.enabled")
	REDIS_ADDR = v.GetString("redis.addr")
	REDIS_PW = v.GetString("redis.pw")

	INFLUX_ENABLED = v.GetBool("influx.enabled")
	INFLUX_URL = v.GetString("influx.url")
	INFLUX_TOKEN = v.GetString("influx.token")
	INFLUX_ORG = v.GetString("influx.org")
	INFLUX_BUCKET = v.GetString("influx.bucket")

	SPR_USER = v.GetString("super.user")
	SPR_EMAIL = v.GetString("super.email")
	SPR_PW = v.GetString("super.pw")

	WATCHDOG_PERIOD = time.Duration(v.GetInt("watchdog.period_sec")) * time.Second
	DEVICE_INACTIVE_AFTER = time.Duration(v.GetInt("watchdog.inactive_after_min")) * time.Minute
	DEVICE_LOST_AFTER = time.Duration(v.GetInt("watchdog.lost_after_min")) * time.Minute

	/* ALL DATABASES ON THIS FRP ARE REACHED THROUGH THESE CLIENTS */
	ADB.ConnStr = ADMIN_DB_CONNECTION_STRING
	FRP.ConnStr = FRP_DB_CONNECTION_STRING

	return
}
