package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/magna-galactica/api/internal/platform/logging"
)

// Path is where the hello operation is mounted.
const Path = "/api/hello"

// Register wires the hello route into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Greet someone by name",
		Description: "Returns `Hello, {name}!`. The name is echoed as given; an empty value is greeted as-is.",
		Tags:        []string{"Hello"},
	}, getHandler)
}

// Greeting builds the hello message for name.
func Greeting(name string) string {
	return "Hello, " + name + "!"
}

func getHandler(ctx context.Context, input *GetInput) (*GetOutput, error) {
	applog.LogInfo(ctx, "hello get", zap.String("path", Path), zap.Int("nameLength", len(input.Name)))
	return &GetOutput{Body: GreetingData{Message: Greeting(input.Name)}}, nil
}
