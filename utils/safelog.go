// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks guest data in production
// ============================================================================
// Emails, invite/share tokens and UUIDs are shortened or hidden when the
// process runs in production so access logs never carry guest identities
// or credentials that unlock private events.
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction enables masking.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	// LogLevel filters SafeDebug/SafeInfo/SafeWarn (DEBUG, INFO, WARN, ERROR)
	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

	// share and invite tokens in request paths: /e/<token>, /i/<token>
	pathTokenRegex = regexp.MustCompile(`/(e|i|ws/e)/[0-9A-Za-z]{5,}`)
)

// ============================================================================
// MASKING
// ============================================================================

// MaskString hides sensitive data in a log line.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := emailRegex.ReplaceAllString(input, "***@***.***")
	result = uuidRegex.ReplaceAllStringFunc(result, shorten)
	result = MaskPath(result)
	return result
}

// MaskPath hides share and invite tokens embedded in a URL path.
func MaskPath(path string) string {
	if !IsProduction {
		return path
	}
	return pathTokenRegex.ReplaceAllStringFunc(path, func(m string) string {
		i := strings.LastIndex(m, "/")
		return m[:i+1] + shorten(m[i+1:])
	})
}

func shorten(s string) string {
	if len(s) > 8 {
		return s[:4] + "..."
	}
	return "***"
}

// MaskID keeps the first 8 characters of an id.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// SAFE LOGGING
// ============================================================================

// SafeDebug only logs when LOG_LEVEL=DEBUG.
func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

// LogEventAction logs an action on an event without exposing its share token.
func LogEventAction(action string, eventID string, userID string) {
	log.Printf("[Event] %s - Event: %s User: %s", action, MaskID(eventID), MaskID(userID))
}

// LogInviteAction logs an invite lifecycle step.
func LogInviteAction(action string, eventID string, email string) {
	log.Printf("[Invite] %s - Event: %s Email: %s", action, MaskID(eventID), MaskEmail(email))
}

func LogAuthAction(action string, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - Email: %s Status: %s", action, MaskEmail(email), status)
}

func LogAPIRequest(method string, path string, userID string, statusCode int, duration string) {
	log.Printf("[API] %s %s - User: %s Status: %d Duration: %s",
		method,
		MaskPath(uuidRegex.ReplaceAllStringFunc(path, func(id string) string { return MaskID(id) })),
		MaskID(userID),
		statusCode,
		duration)
}

func LogWebSocket(action string, eventID string) {
	log.Printf("[WS] %s - Event: %s", action, MaskID(eventID))
}

// ============================================================================
// UTILITIES
// ============================================================================

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

func LogStartup(appName string, version string, port string, demo bool) {
	log.Printf("🚀 %s v%s starting...", appName, version)
	log.Printf("   Mode: %s", GetEnvMode())
	log.Printf("   Port: %s", port)
	log.Printf("   Log Level: %d", LogLevel)
	if demo {
		log.Printf("   ⚠️  DATABASE_URL not set: running in demo mode, nothing is persisted")
	}
	if IsProduction {
		log.Printf("   ⚠️  Production mode: Sensitive data will be masked in logs")
	}
}
