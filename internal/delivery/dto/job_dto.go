package dto

// ProcessRequest names one image source: a stored file path or a direct URL.
type ProcessRequest struct {
	FilePath string `json:"file_path"`
	ImageURL string `json:"image_url"`
}

type ProcessInput struct {
	Source   string `json:"source"`
	FilePath string `json:"file_path,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type ProcessResult struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	MaskB64 string `json:"mask_b64"`
}

type ProcessResponse struct {
	Input  ProcessInput  `json:"input"`
	Result ProcessResult `json:"result"`
}
