package library

// SyncStatus is the reconciliation state of a single track. It is recomputed
// on every reconciliation pass except for permanently downloaded tracks.
type SyncStatus string

const (
	// StatusAddedToSource: present remotely, absent from the previous record.
	StatusAddedToSource SyncStatus = "added_to_source"
	// StatusNotDownloaded: present remotely and in the previous record, but
	// the local file is missing.
	StatusNotDownloaded SyncStatus = "not_downloaded"
	// StatusRemovedFromSource: gone remotely, previous status was downloaded.
	StatusRemovedFromSource SyncStatus = "removed_from_source"
	// StatusLocalFile: gone remotely, not permanently downloaded, previous
	// status was not downloaded.
	StatusLocalFile SyncStatus = "local_file"
	// StatusPermanentlyDownloaded is sticky; the file is retained regardless
	// of remote presence.
	StatusPermanentlyDownloaded SyncStatus = "permanently_downloaded"
	// StatusDownloaded: present remotely and the local file exists.
	StatusDownloaded SyncStatus = "downloaded"
)

// SyncAction is a user-chosen resolution for a track after a reconciliation
// pass.
type SyncAction string

const (
	ActionDownload            SyncAction = "download"
	ActionDelete              SyncAction = "delete"
	ActionDoNothing           SyncAction = "do_nothing"
	ActionKeepPermanently     SyncAction = "keep_permanently"
	ActionRemoveFromPermanent SyncAction = "remove_from_permanently_downloaded"
	ActionRedownloadMetadata  SyncAction = "redownload_metadata"
	ActionDecideIndividually  SyncAction = "decide_individually"
)

// Statuses lists all statuses in display order.
var Statuses = []SyncStatus{
	StatusAddedToSource,
	StatusNotDownloaded,
	StatusRemovedFromSource,
	StatusLocalFile,
	StatusPermanentlyDownloaded,
	StatusDownloaded,
}

// actionOptions maps each status to the actions a user may legally choose for
// a track in that status. The executor rejects anything outside this table.
var actionOptions = map[SyncStatus][]SyncAction{
	StatusAddedToSource:         {ActionDownload, ActionDoNothing, ActionDecideIndividually},
	StatusNotDownloaded:         {ActionDownload, ActionDoNothing, ActionDecideIndividually},
	StatusRemovedFromSource:     {ActionDelete, ActionDoNothing, ActionKeepPermanently, ActionDecideIndividually},
	StatusLocalFile:             {ActionDelete, ActionDoNothing, ActionKeepPermanently, ActionDecideIndividually},
	StatusPermanentlyDownloaded: {ActionDoNothing, ActionRemoveFromPermanent, ActionDecideIndividually},
	StatusDownloaded:            {ActionDoNothing, ActionDownload, ActionRedownloadMetadata, ActionDecideIndividually},
}

// ActionOptions returns the legal actions for a status, in display order.
func ActionOptions(s SyncStatus) []SyncAction {
	opts := actionOptions[s]
	out := make([]SyncAction, len(opts))
	copy(out, opts)
	return out
}

// ActionAllowed reports whether a is a legal choice for a track in status s.
func ActionAllowed(s SyncStatus, a SyncAction) bool {
	for _, opt := range actionOptions[s] {
		if opt == a {
			return true
		}
	}
	return false
}

// DefaultSyncActions returns the default per-status resolution policy for a
// fresh collection.
func DefaultSyncActions() map[SyncStatus]SyncAction {
	return map[SyncStatus]SyncAction{
		StatusAddedToSource:         ActionDownload,
		StatusNotDownloaded:         ActionDownload,
		StatusRemovedFromSource:     ActionDecideIndividually,
		StatusLocalFile:             ActionDoNothing,
		StatusPermanentlyDownloaded: ActionDoNothing,
		StatusDownloaded:            ActionDoNothing,
	}
}

// Meta carries display metadata for a status or action. It lives outside the
// reconciliation logic; the engine only ever compares tags.
type Meta struct {
	Label string
	Tip   string
}

var statusMeta = map[SyncStatus]Meta{
	StatusAddedToSource:         {"Track added to URL", "Track is present online, but was not present in the previous sync."},
	StatusNotDownloaded:         {"Track not downloaded", "Track is present online, was also present in previous sync, but the corresponding file does not exist."},
	StatusRemovedFromSource:     {"Track removed from URL", "Track is not present online, but was present in the previous sync."},
	StatusLocalFile:             {"File only exists locally", "The file is not marked as permanently downloaded and does not correspond to a track found online."},
	StatusPermanentlyDownloaded: {"File permanently downloaded", "The file is marked as permanently downloaded (even though its corresponding track might not exist anymore)."},
	StatusDownloaded:            {"File downloaded", "Track is present online and the corresponding file exists."},
}

var actionMeta = map[SyncAction]Meta{
	ActionDownload:            {"Download", "Download the file."},
	ActionDelete:              {"Delete", "Delete the file and remove the track entry from the URL."},
	ActionDoNothing:           {"Do nothing", "Don't delete or download a file and don't change the configuration."},
	ActionKeepPermanently:     {"Mark as permanently downloaded", "Don't delete the file and mark it as permanently downloaded."},
	ActionRemoveFromPermanent: {"Mark as not permanently downloaded", "Mark the file as not permanently downloaded (but don't delete the file)."},
	ActionRedownloadMetadata:  {"Redownload metadata", "Download metadata again, but don't download the actual file again."},
	ActionDecideIndividually:  {"Decide individually", "Pick an action per track. Syncing can only start when no selected action is 'Decide individually'."},
}

// StatusMeta returns display metadata for a status.
func StatusMeta(s SyncStatus) Meta { return statusMeta[s] }

// ActionMeta returns display metadata for an action.
func ActionMeta(a SyncAction) Meta { return actionMeta[a] }

// ValidStatus reports whether s is one of the six known statuses.
func ValidStatus(s SyncStatus) bool {
	_, ok := statusMeta[s]
	return ok
}

// ValidAction reports whether a is a known action.
func ValidAction(a SyncAction) bool {
	_, ok := actionMeta[a]
	return ok
}
