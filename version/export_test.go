package version

var (
	ResolveVersion = resolveVersion
	ReadRevision   = readRevision
)
