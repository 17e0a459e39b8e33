package constants

import "time"

const (
	RequestTimeout    = 30 * time.Second
	DatabaseTimeout   = 5 * time.Second
	CollectTimeout    = 3 * time.Minute
	NavigationTimeout = 30 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultMatchLimit       = 20
	DefaultMatchListLimit   = 50
	DefaultSummaryLimit     = 100
	DefaultHistoryLimit     = 100
	MaxListLimit            = 500
	DefaultQueueSize        = 4
	DefaultRetryAttempts    = 3
	DefaultRetryBaseDelay   = 2 * time.Second
	MinCanonicalIDLength    = 6
	DebugArtifactPermission = 0o644
)

// Placeholders the source and older configs use for "no id yet".
var PlaceholderIDs = []string{"", "unknown", "unknown_code"}

const (
	UnknownValue    = "Unknown"
	NoDataName      = "No Data"
	UnrankedTier    = "Unranked"
	NoCharacter     = "None"
	SystemErrorPath = "error-system"
)

const (
	SettingSubjectID = "subject_id"
)
