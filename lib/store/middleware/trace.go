package middleware

import (
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var Logger = logger.GetLogger("middleware")

type trace struct {
	logger logger.ILogger
}

// NewTrace logs every call at debug level, and failed calls at warning level.
// A nil logger uses the package logger.
func NewTrace(l logger.ILogger) store.Middleware {
	if l == nil {
		l = Logger
	}
	return &trace{logger: l}
}

func (t *trace) Handle(call *store.Call, next store.Handler) (any, error) {
	start := time.Now()
	value, err := next(call)
	if err != nil {
		t.logger.Warningf("%s %s failed after %s: %v", call.Direction, call.Key, time.Since(start), err)
		return value, err
	}
	t.logger.Debugf("%s %s (%s)", call.Direction, call.Key, time.Since(start))
	return value, nil
}
