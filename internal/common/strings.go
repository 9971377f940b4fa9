package common

// UnknownStr is the fallback name for enum values outside their declared range.
const UnknownStr = "unknown"
