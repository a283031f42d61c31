package config

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNValue returns the explicit DSN or builds one from the discrete fields.
func (c DatabaseConfig) DSNValue() string {
	if c.DSN != "" {
		return c.DSN
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": c.Charset}
	for k, v := range c.Params {
		mc.Params[k] = v
	}
	return mc.FormatDSN()
}

// Addr returns host:port of the Redis server.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
