package jobs

import (
	"encoding/json"
	"fmt"
)

const (
	TaskDownload = "media:download"
)

// DownloadRequest is one inbound job. Treat it as immutable once built.
type DownloadRequest struct {
	JobID          string `json:"job_id"`                    // optional; executor assigns a ULID if empty
	ChatID         int64  `json:"chat_id"`                   // Telegram chat to report to
	SourceURL      string `json:"source_url"`                // page URL handed to the download tool
	CredentialPath string `json:"credential_path,omitempty"` // cookies file, passed through as-is
	WantTranscode  bool   `json:"want_transcode"`            // /gif jobs
}

func (r DownloadRequest) Validate() error {
	if r.SourceURL == "" {
		return fmt.Errorf("download request for chat %d has no url", r.ChatID)
	}
	return nil
}

// DownloadPayload is the asynq task body for TaskDownload.
type DownloadPayload struct {
	Request DownloadRequest `json:"request"`
}

func EncodeDownload(r DownloadRequest) ([]byte, error) {
	return json.Marshal(DownloadPayload{Request: r})
}

func DecodeDownload(b []byte) (DownloadRequest, error) {
	var p DownloadPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return DownloadRequest{}, fmt.Errorf("decode %s payload: %w", TaskDownload, err)
	}
	return p.Request, p.Request.Validate()
}
