package service

import (
	"fmt"

	apperrors "telegrab/internal/errors"
	"telegrab/internal/models"
)

// Validator applies the pre-download rules to a descriptor. The
// ceilings come from configuration. Missing duration or size data is
// never a violation; only an explicit breach rejects.
type Validator struct {
	limits models.LimitsConfig
}

func NewValidator(limits models.LimitsConfig) *Validator {
	return &Validator{limits: limits}
}

func (v *Validator) Validate(d *models.MediaDescriptor) error {
	if d.IsPlaylist() {
		return v.validatePlaylist(d)
	}
	return v.validateSingle(d)
}

// validatePlaylist enforces the type-dependent ceiling: video batches
// are costlier to relay and get the lower limit. An untyped first entry
// counts as non-video.
func (v *Validator) validatePlaylist(d *models.MediaDescriptor) error {
	limit := v.limits.MaxPhotoPlaylistItems
	if d.Entries[0].Type == "video" {
		limit = v.limits.MaxVideoPlaylistItems
	}

	if len(d.Entries) > limit {
		return apperrors.New(apperrors.ErrCodeValidationFailed,
			fmt.Sprintf("playlist has %d items, limit %d", len(d.Entries), limit),
		).WithUserMessage(fmt.Sprintf(
			"The playlist is too long: %d items is more than the maximum of %d.", len(d.Entries), limit))
	}
	return nil
}

func (v *Validator) validateSingle(d *models.MediaDescriptor) error {
	if d.Duration > 0 && d.Duration > v.limits.MaxDurationSec {
		return apperrors.New(apperrors.ErrCodeValidationFailed,
			fmt.Sprintf("duration %.0fs over limit %.0fs", d.Duration, v.limits.MaxDurationSec),
		).WithUserMessage(fmt.Sprintf(
			"The media is too long: %.0f minutes is over the %.0f minute limit.",
			d.Duration/60, v.limits.MaxDurationSec/60))
	}

	maxBytes := v.limits.MaxFilesizeMB * 1024 * 1024
	if d.Filesize > 0 && d.Filesize > maxBytes {
		return apperrors.New(apperrors.ErrCodeValidationFailed,
			fmt.Sprintf("filesize %d over limit %d", d.Filesize, maxBytes),
		).WithUserMessage(fmt.Sprintf(
			"The media file is too large: %d MB is over the %d MB limit.",
			d.Filesize/1024/1024, v.limits.MaxFilesizeMB))
	}

	return nil
}
