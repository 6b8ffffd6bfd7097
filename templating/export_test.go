package templating

var (
	TrimLeadingBreakForTest  = trimLeadingBreak
	TrimTrailingBreakForTest = trimTrailingBreak
	TrimFinalNewlineForTest  = trimFinalNewline
	FileDigestForTest        = fileDigest
	UnchangedForTest         = unchanged
)
