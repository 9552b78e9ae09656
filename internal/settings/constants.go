package settings

// DB config keys and defaults for panel settings.
const (
	// SiteNameKey is the DB config key for the UI site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback UI site name.
	DefaultSiteName = "Service Panel"
	// MinPasswordLengthKey controls the minimum accepted password length.
	MinPasswordLengthKey = "MIN_PASSWORD_LENGTH"
	// DefaultMinPasswordLength is the fallback minimum password length.
	DefaultMinPasswordLength = 6
)
