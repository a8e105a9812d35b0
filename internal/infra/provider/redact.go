package provider

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// secretParam matches credential query parameters inside URLs and error text.
var secretParam = regexp.MustCompile(`(?i)\b(apikey|api_key|access_token|token)=[^&\s"']*`)

// RedactSecrets masks credential query parameter values in s.
func RedactSecrets(s string) string {
	return secretParam.ReplaceAllString(s, "${1}=REDACTED")
}

// restyLogger adapts zap to resty.Logger. Resty logs request URLs on
// retries and errors, so every message is redacted first.
type restyLogger struct {
	sugar *zap.SugaredLogger
}

func newRestyLogger(logger *zap.Logger) *restyLogger {
	return &restyLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.sugar.Error(RedactSecrets(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.sugar.Warn(RedactSecrets(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.sugar.Debug(RedactSecrets(fmt.Sprintf(format, v...)))
}
