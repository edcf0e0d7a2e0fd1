package dto

type DownloadRequest struct {
	AcquisitionID string   `json:"acquisition_id" validate:"required"`
	Filenames     []string `json:"filenames" validate:"required,min=1,dive,required"`
}

type FlywheelStatusResponse struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Message    string `json:"message"`
}
