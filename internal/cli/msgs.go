package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort   = "An espanso match file editor that keeps your comments"
	MsgListShort   = "List the matches in one file"
	MsgFilesShort  = "List the snippet files in the match directory"
	MsgAddShort    = "Add a trigger/replace match to a file"
	MsgSetShort    = "Update one field of an existing match"
	MsgRmShort     = "Delete a match from a file"
	MsgInitShort   = "Create a new snippet file with a template match"
	MsgRmFileShort = "Delete a snippet file"
	MsgFmtShort    = "Check (or normalize) a file's round-trip stability"
	MsgWatchShort  = "Report external changes to a file as they happen"
	MsgEditShort   = "Edit a file's matches interactively"
	MsgGuideShort  = "Show the user guide"
	MsgConfigShort = "Inspect or change ezmatch settings"

	// Status messages
	MsgAdded          = "Added %q to %s\n"
	MsgUpdated        = "Updated %q in %s\n"
	MsgDeleted        = "Deleted %q from %s\n"
	MsgFileCreated    = "Created %s. Add matches and save.\n"
	MsgFileDeleted    = "Deleted %s\n"
	MsgFmtStable      = "%s is round-trip stable\n"
	MsgFmtNormalized  = "Normalized %s\n"
	MsgFmtWouldChange = "%s would change on re-serialization\n"
	MsgWatching       = "Watching %s (ctrl-c to stop)\n"
	MsgFileChanged    = "%s changed on disk (%s)\n"
	MsgPlainWarning   = "warning: structural mode active; comments and formatting will not be preserved on save\n"
	MsgExternalEdit   = "warning: %s changed on disk since it was loaded; saving will overwrite those changes\n"

	// Flag descriptions
	FlagDirDesc   = "Espanso match directory (overrides config)"
	FlagPlainDesc = "Use the structural backend (no comment preservation)"
	FlagAtDesc    = "Insert position (default appends)"
	FlagCheckDesc = "Only report, do not rewrite"
	FlagForceDesc = "Required to actually delete the file"
)
