package transport

import "github.com/inkbridge/inkbridge/metrics"

// Metadata travels in the "data" part of a multipart submission and at the
// top level of a JSON submission.
type Metadata struct {
	ID       string         `json:"id"`
	Prompt   string         `json:"prompt,omitempty"`
	MimeType string         `json:"mimeType"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Metrics  metrics.Export `json:"metrics"`
}

// JSONPayload is the body of a JSON submission. Image is base64 encoded.
type JSONPayload struct {
	Metadata
	Image string `json:"image"`
}

// Response is what the backend answers. Only one of the text fields is
// usually set.
type Response struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text,omitempty"`
	Label string `json:"label,omitempty"`
	Words []struct {
		Label string `json:"label"`
	} `json:"words,omitempty"`
}
