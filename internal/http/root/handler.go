package root

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/magna-galactica/api/internal/platform/logging"
)

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Welcome to Magna Galactica API"

// WelcomeData models the root response payload.
type WelcomeData struct {
	Message string `json:"message" doc:"Welcome message" example:"Welcome to Magna Galactica API"`
}

// Output is the response wrapper for the root endpoint.
type Output struct {
	Body WelcomeData
}

// Register wires the root route into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Welcome message",
		Tags:        []string{"General"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*Output, error) {
	applog.LogInfo(ctx, "root get", zap.String("path", "/"))
	return &Output{Body: WelcomeData{Message: WelcomeMessage}}, nil
}
