package logsvc

import (
	"context"
	"log"
	"net/http"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/shule/core"
)

// custom data keys
const (
	extraRole = "role"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare turns args into rollbar.Log arguments.
// The first non-zero core.Actor becomes the item's person through a per-item context; the global
// rollbar person is never set. The actor's role and the extra maps are merged into the custom data.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	extras := make(map[string]interface{})
	var actorSet bool
	for _, arg := range args {
		switch val := arg.(type) {
		case core.Actor:
			if actorSet || val.IsZero() {
				continue
			}
			actorSet = true
			newArgs = append(newArgs, rollbar.NewPersonContext(context.Background(), &rollbar.Person{
				Id:       val.ID,
				Username: val.Username,
				Email:    val.Email,
			}))
			if val.Role != "" {
				extras[extraRole] = val.Role
			}
		case map[string]interface{}:
			for k, v := range val {
				extras[k] = v
			}
		default:
			newArgs = append(newArgs, arg)
		}
	}
	if len(extras) > 0 {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		switch val := arg.(type) {
		case core.Actor:
			if !val.IsZero() {
				l.std.Printf("user: %s (%s) role: %q\n", val.Username, val.ID, val.Role)
			}
		case *http.Request:
			l.std.Printf("request: %s %s\n", val.Method, val.URL.Path)
		default:
			l.std.Printf("%+v\n", arg)
		}
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
