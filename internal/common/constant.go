package common

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "session"

// UnknownUsername is shown for photos whose owner can no longer be resolved.
const UnknownUsername = "Unknown User"

// MissingDescription replaces empty descriptions in bulk-write items.
const MissingDescription = "N/A"
