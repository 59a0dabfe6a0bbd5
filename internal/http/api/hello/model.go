package hello

// GreetingData models the response payload for the hello endpoint.
type GreetingData struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello, World!"`
}

// GetOutput is the response wrapper for GET /api/hello.
type GetOutput struct {
	Body GreetingData
}
