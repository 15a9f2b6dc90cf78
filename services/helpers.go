package services

import (
	"github.com/tasknet/contest-system/models"
	"github.com/tasknet/contest-system/storage"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// normalizePage turns 1-based page/limit query values into LIMIT/OFFSET.
func normalizePage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func populateContestImageURL(contest *models.Contest, uploader storage.FileUploader) {
	if contest != nil && contest.ProfileImgKey != nil && *contest.ProfileImgKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*contest.ProfileImgKey)
		if url != "" {
			contest.ProfileImgURL = &url
		}
	}
}
