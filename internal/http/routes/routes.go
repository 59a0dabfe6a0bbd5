package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/magna-galactica/api/internal/http/api/hello"
	"github.com/magna-galactica/api/internal/http/root"
)

// Register wires all huma operations into the provided API.
// The health probe is a plain handler and is mounted on the router directly.
func Register(api huma.API) {
	root.Register(api)
	hello.Register(api)
}
