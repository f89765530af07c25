package api

import (
	"log"
	"time"
)

// logRequest logs an outgoing backend request.
func logRequest(method, url string) {
	log.Printf("[api] %s %s", method, url)
}

// logResponse logs a completed backend request.
func logResponse(method, url string, statusCode int, duration time.Duration) {
	log.Printf("[api] %s %s status=%d duration=%dms",
		method, url, statusCode, duration.Milliseconds())
}

// logError logs a failed backend operation.
func logError(op string, err error) {
	log.Printf("[api] %s error: %v", op, err)
}
