package commands

import (
	"context"

	"go.uber.org/zap"

	"zdguide/internal/application"
	"zdguide/internal/ports"
)

// Run executes intent as the local operator and returns its report
func Run(ctx context.Context, app *application.Context, intent application.Intent) *application.RunReport {
	switch intent {
	case application.IntentTestConnection:
		return NewTestConnectionCommand(app).Execute(ctx)
	case application.IntentSyncCategories:
		return NewSyncCategoriesCommand(app).Execute(ctx)
	case application.IntentSyncSections:
		return NewSyncSectionsCommand(app).Execute(ctx)
	case application.IntentSyncArticles:
		return NewSyncArticlesCommand(app).Execute(ctx)
	default:
		report := application.NewRunReport(intent)
		report.Error(application.CodeConfiguration, "Unknown action: "+string(intent))
		report.Finish()
		return report
	}
}

// Dispatch runs a remotely triggered intent after consuming its anti-replay
// token. ok is false when the request must be ignored: unknown intent or a
// missing, expired, replayed or foreign token. Privilege is checked by the caller.
func Dispatch(ctx context.Context, app *application.Context, nonces ports.NonceVerifier, intentName, token string) (*application.RunReport, bool) {
	intent, err := application.ParseIntent(intentName)
	if err != nil {
		app.Log().Debug("ignoring trigger", zap.String("intent", intentName), zap.Error(err))
		return nil, false
	}
	if token == "" || !nonces.Consume(string(intent), token) {
		app.Log().Debug("ignoring trigger with invalid token", zap.String("intent", intentName))
		return nil, false
	}
	return Run(ctx, app, intent), true
}
