package dto

type BackendStatus struct {
	Available bool   `json:"available"`
	Status    string `json:"status"`
	Model     string `json:"model,omitempty"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
}

type BackendStatuses struct {
	DeepSeek  BackendStatus `json:"deepseek"`
	PythonApi BackendStatus `json:"pythonApi"`
}

type StatusResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Status      string          `json:"status"`
	Apis        BackendStatuses `json:"apis"`
	PrimaryAPI  string          `json:"primaryAPI"`
	FallbackAPI string          `json:"fallbackAPI"`
}
