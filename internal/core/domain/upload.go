package domain

import "math"

// UploadEventType distinguishes progress reports from the final outcome.
type UploadEventType string

const (
	UploadProgress UploadEventType = "progress"
	UploadResponse UploadEventType = "response"
)

// UploadEvent is one step of a profile image upload. Progress events carry
// Percent; the single Response event carries User on success or Err.
type UploadEvent struct {
	Type    UploadEventType
	Percent int
	User    *User
	Err     error
}

// ProgressPercent is round(100 * loaded / total), or 0 when total is unknown.
func ProgressPercent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	if loaded > total {
		loaded = total
	}
	return int(math.Round(100 * float64(loaded) / float64(total)))
}
