package config

import (
	"strings"
	"time"
)

const (
	baseURLVar     = "SUBFINDER_API_URL"
	httpTimeoutVar = "SUBFINDER_HTTP_TIMEOUT"
)

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
}

type API struct {
	file *FileValues
}

var _ APIConfig = API{}

// GetBaseURL returns the API origin without a trailing slash (e.g., "https://subs.example.com").
// Endpoint paths such as /api/auth/login are appended to it.
func (a API) GetBaseURL() string {
	return strings.TrimSuffix(GetEnv(baseURLVar, orDefault(a.file.API.BaseURL, "http://localhost:5000")), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	return GetDurationEnv(httpTimeoutVar, a.file.API.Timeout, 15*time.Second)
}
