package engine

import "musicsync/internal/library"

// Transition computes a track's next status from its previous status, whether
// its remote id was observed in the current fetch, and whether its recorded
// file is present in the target folder listing. prev == "" stands for "no
// prior record"; a "" result means no record is created.
//
// The rules are evaluated in a fixed order and are mutually exclusive:
//
//  1. remote id absent: DOWNLOADED becomes REMOVED_FROM_SOURCE; permanently
//     downloaded tracks are sticky; everything else becomes LOCAL_FILE.
//  2. remote id present, no prior record: ADDED_TO_SOURCE.
//  3. remote id present, record exists: permanently downloaded tracks are
//     sticky regardless of file presence; otherwise a missing file means
//     NOT_DOWNLOADED and a present file means DOWNLOADED.
func Transition(prev library.SyncStatus, remotePresent, filePresent bool) library.SyncStatus {
	if !remotePresent {
		switch prev {
		case "":
			return ""
		case library.StatusDownloaded:
			return library.StatusRemovedFromSource
		case library.StatusPermanentlyDownloaded:
			return library.StatusPermanentlyDownloaded
		default:
			return library.StatusLocalFile
		}
	}
	if prev == "" {
		return library.StatusAddedToSource
	}
	if prev == library.StatusPermanentlyDownloaded {
		return library.StatusPermanentlyDownloaded
	}
	if !filePresent {
		return library.StatusNotDownloaded
	}
	return library.StatusDownloaded
}
