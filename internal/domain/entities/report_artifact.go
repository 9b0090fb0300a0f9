package entities

// XLSXContentType is the MIME type of rendered reports
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportArtifact is a rendered spreadsheet held entirely in memory.
// Once returned from the pipeline it belongs to the caller.
type ReportArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// Size returns the artifact size in bytes
func (a *ReportArtifact) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Content))
}
