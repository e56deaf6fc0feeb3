package dto

type StreamConfigRequest struct {
	URL      string `json:"url" validate:"required_if=Enabled true,omitempty,url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Enabled  bool   `json:"enabled"`
}

type StreamConfigResponse struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
}
