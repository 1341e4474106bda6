package model

import "time"

// DiaryEntry points at an uploaded document in blob storage. The JSON name
// "filename" is what the browser client reads.
type DiaryEntry struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	FileReference string    `json:"filename"`
	UploadDate    time.Time `json:"upload_date"`
}

type UploadResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}
