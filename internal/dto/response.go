package dto

// ImageInfo is one element of a gallery listing. The frontend builds the
// public URL by concatenating Filename and FileType, so FileType carries
// the leading dot.
type ImageInfo struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	Size             int    `json:"size"`
	UploadDate       string `json:"upload_date"`
	FileType         string `json:"file_type"`
}

// ListImagesResponse wraps a gallery page.
type ListImagesResponse struct {
	Images []ImageInfo `json:"images"`
}

// UploadResult reports where an uploaded image ended up.
type UploadResult struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}
