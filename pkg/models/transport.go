package models

import "encoding/json"

// URLAnalysisRequest analyses a remote image
type URLAnalysisRequest struct {
	URL    string `json:"url" binding:"required"`
	Preset string `json:"preset,omitempty"`
	// Options are AnalysisOptions fields applied over the preset
	Options   json.RawMessage `json:"options,omitempty"`
	OmitImage bool            `json:"omit_image,omitempty"`
	Detailed  bool            `json:"detailed,omitempty"`
}

// BatchAnalysisRequest analyses several remote images with one configuration
type BatchAnalysisRequest struct {
	URLs      []string        `json:"urls" binding:"required,min=1,dive,required"`
	Preset    string          `json:"preset,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`
	OmitImage bool            `json:"omit_image,omitempty"`
	Detailed  bool            `json:"detailed,omitempty"`
}

// BatchItemResponse is one entry of a batch; exactly one of Result and Error is set
type BatchItemResponse struct {
	Index  int               `json:"index"`
	URL    string            `json:"url"`
	Result *AnalysisResponse `json:"result,omitempty"`
	Error  *ErrorResponse    `json:"error,omitempty"`
}

// BatchAnalysisResponse lists batch results in request order
type BatchAnalysisResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
