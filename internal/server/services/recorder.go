package services

// Recorder receives domain counters. *metrics.Metrics implements it.
type Recorder interface {
	Follow(action string)
	ImageUpload(slot, result string)
	ImageDeletion(result string)
}

type nopRecorder struct{}

func (nopRecorder) Follow(string)              {}
func (nopRecorder) ImageUpload(string, string) {}
func (nopRecorder) ImageDeletion(string)       {}
