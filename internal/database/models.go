package database

// Run holds the stored statistics for one pipeline run.
type Run struct {
	ID               int64
	RunDate          string
	TotalSources     int
	SucceededSources int
	FailedSources    int
	RawItems         int
	CuratedItems     int
	CreatedAt        *string
}

// StoredItem is a scored item as persisted for a run.
type StoredItem struct {
	ID          int64
	RunDate     string
	Group       string
	Title       string
	Summary     *string
	URL         *string
	Source      *string
	Category    *string
	Priority    *string
	PublishedAt *string
	Score       float64
	Tier        string
	Tags        []string
	Curated     bool
	CollectedAt *string
}

// StoredOutcome is a per-source fetch outcome as persisted for a run.
type StoredOutcome struct {
	ID        int64
	RunDate   string
	Source    string
	Group     *string
	OK        bool
	ItemCount int
	Error     *string
}

// StoredDigest is the composed digest for a run.
type StoredDigest struct {
	ID           int64
	RunDate      string
	Summary      string
	BodyMarkdown string
	GeneratedAt  *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalRuns     int
	TotalItems    int
	CuratedItems  int
	HighTierItems int
	Digests       int
	LastRunDate   string
}
