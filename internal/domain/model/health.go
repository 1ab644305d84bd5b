package model

// ServiceHealth is the payload of the health endpoint. Results carries
// per-dependency health when a detailed check was requested.
type ServiceHealth struct {
	Service string          `json:"service"`
	Healthy bool            `json:"healthy"`
	Version string          `json:"version,omitempty"`
	Results []ServiceHealth `json:"results,omitempty"`
}
