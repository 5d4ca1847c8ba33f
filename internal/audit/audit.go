// Package audit records security-relevant events (sign-in, sign-out,
// profile submit) on a dedicated log channel.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
)

// Event names.
const (
	EventSignin       = "signin"
	EventAutoSignin   = "auto_signin"
	EventSignout      = "signout"
	EventPromptSubmit = "prompt_submit"
)

// Log emits one audit event. Request-scoped fields (request id) ride along
// from the context logger.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, fields...)
}
