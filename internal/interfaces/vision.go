package interfaces

import "context"

// VisionProvider calls a vision-language model with a text prompt and a JPEG
// image, returning the model's raw text response. Quota classification and
// response repair are the caller's concern.
type VisionProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, jpeg []byte) (string, error)
}

// Publisher broadcasts progress lines to any attached observers.
type Publisher interface {
	Publish(level, message string)
}
